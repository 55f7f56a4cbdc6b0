package templates

import (
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/csg33k/timeoff-request/internal/domain"
)

var (
	statusPolicyOnce sync.Once
	statusPolicy     *bluemonday.Policy
)

// statusText strips any markup from a status message. Messages can embed text
// reported by the remote backend, which is untrusted. The policy output is
// already escaped, so it is written raw.
func statusText(s domain.Status) string {
	statusPolicyOnce.Do(func() {
		statusPolicy = bluemonday.StrictPolicy()
	})
	return statusPolicy.Sanitize(s.Message)
}

// writer keeps the first write error so components read as straight markup.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *writer) raw(s ...string) {
	for _, v := range s {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, v)
	}
}

// text writes escaped character data or attribute values.
func (p *writer) text(s string) { p.raw(templ.EscapeString(s)) }

func (p *writer) attrs(a templ.Attributer) {
	if p.err == nil {
		p.err = templ.RenderAttributes(p.ctx, p.w, a)
	}
}

func (p *writer) render(c templ.Component) {
	if p.err == nil {
		p.err = c.Render(p.ctx, p.w)
	}
}
