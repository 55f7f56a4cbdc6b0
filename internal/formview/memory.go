// Package formview holds the in-memory FormView. The web and terminal
// front ends build on it, and tests use it directly.
package formview

import (
	"sync"

	"github.com/csg33k/timeoff-request/internal/domain"
)

// Memory is a concurrency-safe FormView that keeps field values, the focused
// field, the status and the submit flag, and records every focus and status
// change in order.
type Memory struct {
	mu            sync.Mutex
	fields        domain.FormFields
	focused       string
	status        domain.Status
	submitEnabled bool

	focusHistory  []string
	statusHistory []domain.Status
	submitHistory []bool

	onStatus func(domain.Status)
}

// New returns a view with the given initial values and submit enabled.
func New(initial domain.FormFields) *Memory {
	fields := make(domain.FormFields, len(domain.AllFields))
	for k, v := range initial {
		fields[k] = v
	}
	return &Memory{fields: fields, submitEnabled: true}
}

// FromValues builds a view from posted form values, keeping the first value of
// each known field and ignoring everything else.
func FromValues(values map[string][]string) *Memory {
	initial := make(domain.FormFields, len(domain.AllFields))
	for _, name := range domain.AllFields {
		if vs := values[name]; len(vs) > 0 {
			initial[name] = vs[0]
		}
	}
	return New(initial)
}

// OnStatus registers fn to be called after every status change, outside the
// lock.
func (m *Memory) OnStatus(fn func(domain.Status)) {
	m.mu.Lock()
	m.onStatus = fn
	m.mu.Unlock()
}

func (m *Memory) FieldValue(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fields[name]
}

func (m *Memory) SetFieldValue(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[name] = value
}

func (m *Memory) FocusField(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focused = name
	m.focusHistory = append(m.focusHistory, name)
}

func (m *Memory) SetStatus(s domain.Status) {
	m.mu.Lock()
	m.status = s
	m.statusHistory = append(m.statusHistory, s)
	fn := m.onStatus
	m.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func (m *Memory) SetSubmitEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitEnabled = enabled
	m.submitHistory = append(m.submitHistory, enabled)
}

// Fields returns a copy of the current values.
func (m *Memory) Fields() domain.FormFields {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fields.Clone()
}

// Focused is the field that last received focus, or "".
func (m *Memory) Focused() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// ClearFocus forgets the focused field.
func (m *Memory) ClearFocus() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focused = ""
}

func (m *Memory) Status() domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Memory) SubmitEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitEnabled
}

func (m *Memory) FocusHistory() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.focusHistory...)
}

func (m *Memory) StatusHistory() []domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Status(nil), m.statusHistory...)
}

func (m *Memory) SubmitHistory() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.submitHistory...)
}
