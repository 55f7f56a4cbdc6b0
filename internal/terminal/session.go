// Package terminal is the interactive command-line front end. A Session
// prompts for each field, hands the collected values to a submission
// controller and prints the status lines it produces.
package terminal

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/csg33k/timeoff-request/internal/domain"
	"github.com/csg33k/timeoff-request/internal/formview"
	"github.com/csg33k/timeoff-request/internal/ports"
	"github.com/csg33k/timeoff-request/internal/submission"
)

type fieldPrompt struct {
	name   string
	label  string
	help   string
	layout string
}

var prompts = []fieldPrompt{
	{domain.FieldName, "Name", "", ""},
	{domain.FieldEmail, "Email", "", ""},
	{domain.FieldStartDate, "Start Date", "YYYY-MM-DD", domain.DateLayout},
	{domain.FieldStartTime, "Start Time", "HH:MM, 24-hour", domain.TimeLayout},
	{domain.FieldEndDate, "End Date", "YYYY-MM-DD", domain.DateLayout},
	{domain.FieldEndTime, "End Time", "HH:MM, 24-hour", domain.TimeLayout},
	{domain.FieldAbsenceType, "Absence Type", "", ""},
	{domain.FieldReason, "Reason", "", ""},
}

// layoutValidator accepts an empty answer, which the controller reports as a
// missing field, or one matching layout.
func layoutValidator(layout, help string) func(string) error {
	return func(v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		if _, err := time.Parse(layout, v); err != nil {
			return fmt.Errorf("expected %s", help)
		}
		return nil
	}
}

// Session is one terminal form. The honeypot is never prompted, so it stays
// empty for a human at the keyboard.
type Session struct {
	driver PromptDriver
	view   *formview.Memory
	ctl    *submission.Controller
	strip  *bluemonday.Policy
}

// NewSession builds a form backed by its own view and controller and issues
// its first token.
func NewSession(driver PromptDriver, backend ports.Backend, opts ...submission.Option) *Session {
	view := formview.New(nil)
	s := &Session{
		driver: driver,
		view:   view,
		ctl:    submission.New(view, backend, opts...),
		strip:  bluemonday.StrictPolicy(),
	}
	s.ctl.Init()
	return s
}

// View exposes the form state.
func (s *Session) View() *formview.Memory { return s.view }

// Run prompts, submits and repeats until the user declines another round.
// It returns the outcome of the last attempt.
func (s *Session) Run(ctx context.Context) (domain.Outcome, error) {
	s.view.OnStatus(func(st domain.Status) {
		if !st.IsZero() {
			s.driver.Info(ctx, s.format(st))
		}
	})
	defer s.view.OnStatus(nil)

	var last domain.Outcome
	for {
		if err := s.collect(ctx); err != nil {
			return last, err
		}
		last = s.ctl.HandleSubmit(ctx)

		msg := "Submit another request?"
		if !last.Succeeded() {
			msg = "Try again?"
		}
		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: msg, Default: !last.Succeeded()})
		if err != nil {
			return last, err
		}
		if !again {
			return last, nil
		}
	}
}

// collect prompts for every field, or, after a rejected attempt, from the
// focused field onward.
func (s *Session) collect(ctx context.Context) error {
	start := 0
	if f := s.view.Focused(); f != "" {
		for i, p := range prompts {
			if p.name == f {
				start = i
				break
			}
		}
		s.view.ClearFocus()
	}
	for _, p := range prompts[start:] {
		v, err := s.ask(ctx, p)
		if err != nil {
			return err
		}
		s.view.SetFieldValue(p.name, v)
	}
	return nil
}

func (s *Session) ask(ctx context.Context, p fieldPrompt) (string, error) {
	current := s.view.FieldValue(p.name)
	switch p.name {
	case domain.FieldAbsenceType:
		i, err := s.driver.Select(ctx, SelectConfig{
			Message:      p.label,
			Options:      domain.AbsenceTypes,
			DefaultIndex: indexOf(domain.AbsenceTypes, current),
		})
		if err != nil || i < 0 || i >= len(domain.AbsenceTypes) {
			return "", err
		}
		return domain.AbsenceTypes[i], nil
	case domain.FieldReason:
		v, err := s.driver.TextArea(ctx, TextAreaConfig{Message: p.label, Default: current})
		return strings.TrimSpace(v), err
	default:
		cfg := InputConfig{Message: p.label, Default: current, Help: p.help}
		if p.layout != "" {
			cfg.Validator = layoutValidator(p.layout, p.help)
		}
		v, err := s.driver.Input(ctx, cfg)
		return strings.TrimSpace(v), err
	}
}

// format strips markup a backend may have put in its message and marks the
// line with its style.
func (s *Session) format(st domain.Status) string {
	text := html.UnescapeString(s.strip.Sanitize(st.Message))
	switch st.Style {
	case domain.StyleSuccess:
		return "✔ " + text
	case domain.StyleError:
		return "✖ " + text
	}
	return text
}
