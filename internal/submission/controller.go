// Package submission owns the time-off request workflow: local validation,
// the anti-automation checks, the single outbound POST and the status shown
// afterwards. It talks to its surroundings only through the ports package, so
// the same controller drives the web form, the terminal form and tests.
package submission

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/csg33k/timeoff-request/internal/domain"
	"github.com/csg33k/timeoff-request/internal/ports"
	"github.com/csg33k/timeoff-request/internal/token"
)

// State is the position of a controller in its per-attempt lifecycle.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateRejected
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Controller runs submissions for exactly one FormView. Build one per form
// instance; controllers share nothing with each other.
type Controller struct {
	view    ports.FormView
	backend ports.Backend
	tokens  ports.TokenSource
	quotes  ports.QuoteSource
	journal ports.AttemptJournal
	log     *slog.Logger
	now     func() time.Time

	inFlight atomic.Bool
	state    atomic.Int32
}

// Option configures a Controller.
type Option func(*Controller)

// WithQuotes enables the quote line in success messages. A nil source
// disables it.
func WithQuotes(q ports.QuoteSource) Option {
	return func(c *Controller) { c.quotes = q }
}

// WithTokens replaces the default ULID token source.
func WithTokens(t ports.TokenSource) Option {
	return func(c *Controller) {
		if t != nil {
			c.tokens = t
		}
	}
}

// WithJournal records every finished attempt.
func WithJournal(j ports.AttemptJournal) Option {
	return func(c *Controller) { c.journal = j }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a controller for view. backend may be nil, which is reported to
// the user as a configuration error on submit.
func New(view ports.FormView, backend ports.Backend, opts ...Option) *Controller {
	c := &Controller{
		view:    view,
		backend: backend,
		tokens:  token.ULID{},
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init issues the first token into the view. Call it once when the form is
// first shown; a form restored from a post already carries its token.
func (c *Controller) Init() string {
	tok := c.tokens.Next("")
	c.view.SetFieldValue(domain.FieldFormSecret, tok)
	return tok
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return State(c.state.Load()) }

func (c *Controller) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	c.log.Debug("submission state", "from", prev.String(), "to", s.String())
}

// HandleSubmit runs one submission attempt against the view and returns its
// outcome. The submit control is enabled again on every return path. A call
// made while another is in flight fails with domain.ErrBusy and leaves the
// view untouched.
func (c *Controller) HandleSubmit(ctx context.Context) domain.Outcome {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.log.Warn("submission rejected: already in flight")
		return domain.Failure(MsgBusy, domain.ErrBusy)
	}
	defer c.inFlight.Store(false)
	defer func() {
		c.view.SetSubmitEnabled(true)
		c.setState(StateIdle)
	}()

	c.view.SetStatus(domain.Status{})
	c.setState(StateValidating)
	fields := c.readFields()

	if res := Validate(fields); !res.Valid() {
		if res.Field != "" {
			c.view.FocusField(res.Field)
		}
		return c.finish(ctx, fields, StateRejected, domain.Failure(res.Message, res.Err))
	}
	if c.backend == nil || !c.backend.Configured() {
		return c.finish(ctx, fields, StateRejected, domain.Failure(MsgNotConfigured, domain.ErrNotConfigured))
	}

	c.view.SetSubmitEnabled(false)
	c.setState(StateSubmitting)
	c.view.SetStatus(domain.Status{Message: MsgSubmitting})

	reply, err := c.backend.Submit(ctx, fields)
	if err == nil && !reply.Success {
		err = &domain.ApplicationError{Message: reply.Message}
	}
	if err != nil {
		return c.finish(ctx, fields, StateFailed, domain.Failure(MsgFailedPrefix+err.Error(), err))
	}

	c.resetFields(fields.Get(domain.FieldFormSecret))
	return c.finish(ctx, fields, StateSucceeded, domain.Success(c.successMessage()))
}

func (c *Controller) readFields() domain.FormFields {
	f := make(domain.FormFields, len(domain.AllFields))
	for _, name := range domain.AllFields {
		f[name] = c.view.FieldValue(name)
	}
	return f
}

func (c *Controller) resetFields(prevToken string) {
	for _, name := range domain.AllFields {
		if name == domain.FieldFormSecret {
			continue
		}
		c.view.SetFieldValue(name, "")
	}
	c.view.SetFieldValue(domain.FieldFormSecret, c.tokens.Next(prevToken))
}

func (c *Controller) successMessage() string {
	if c.quotes != nil {
		if q := c.quotes.Random(); q != "" {
			return "Time off request submitted! ✈️\n\n\"" + q + "\"\n\nYou will receive a confirmation shortly."
		}
	}
	return "Time off request submitted! ✈️\n\nYou will receive a confirmation shortly."
}

// finish shows the outcome, logs it and journals it.
func (c *Controller) finish(ctx context.Context, fields domain.FormFields, s State, o domain.Outcome) domain.Outcome {
	style := domain.StyleError
	if o.Succeeded() {
		style = domain.StyleSuccess
	}
	c.view.SetStatus(domain.Status{Message: o.Message, Style: style})
	c.setState(s)

	attrs := []any{
		"outcome", o.Kind.String(),
		"email", fields.Get(domain.FieldEmail),
	}
	if o.Err != nil {
		attrs = append(attrs, "kind", string(domain.KindOf(o.Err)), "err", o.Err)
	}
	switch {
	case o.Succeeded():
		c.log.Info("time off request submitted", attrs...)
	case domain.IsValidation(o.Err):
		c.log.Info("time off request rejected", attrs...)
	default:
		c.log.Warn("time off request failed", attrs...)
	}

	if c.journal != nil {
		a := domain.NewAttempt(fields, o, c.now())
		if err := c.journal.RecordAttempt(context.WithoutCancel(ctx), a); err != nil {
			c.log.Error("journal attempt", "err", err)
		}
	}
	return o
}
