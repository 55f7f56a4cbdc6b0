package submission_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/timeoff-request/internal/domain"
	"github.com/csg33k/timeoff-request/internal/formview"
	"github.com/csg33k/timeoff-request/internal/submission"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeBackend struct {
	configured bool
	reply      domain.BackendReply
	err        error
	calls      int
	got        domain.FormFields
	during     func()
}

func (b *fakeBackend) Configured() bool { return b.configured }

func (b *fakeBackend) Submit(_ context.Context, f domain.FormFields) (domain.BackendReply, error) {
	b.calls++
	b.got = f.Clone()
	if b.during != nil {
		b.during()
	}
	return b.reply, b.err
}

type fixedQuotes string

func (q fixedQuotes) Random() string { return string(q) }

type counterTokens struct{ n int }

func (c *counterTokens) Next(string) string {
	c.n++
	return "tok-" + string(rune('0'+c.n))
}

type memJournal struct {
	mu       sync.Mutex
	attempts []domain.Attempt
	err      error
}

func (j *memJournal) RecordAttempt(_ context.Context, a *domain.Attempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.attempts = append(j.attempts, *a)
	return nil
}

func (j *memJournal) GetAttempt(context.Context, int64) (*domain.Attempt, error) {
	return nil, domain.ErrAttemptMissing
}

func (j *memJournal) ListAttempts(context.Context, int) ([]domain.Attempt, error) {
	return j.attempts, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newController(view *formview.Memory, b *fakeBackend, opts ...submission.Option) *submission.Controller {
	opts = append([]submission.Option{submission.WithLogger(quietLogger())}, opts...)
	return submission.New(view, b, opts...)
}

func okBackend() *fakeBackend {
	return &fakeBackend{configured: true, reply: domain.BackendReply{Success: true}}
}

// ---------------------------------------------------------------------------
// Validation paths never reach the network
// ---------------------------------------------------------------------------

func TestHandleSubmit_MissingFieldFocusesAndAborts(t *testing.T) {
	for _, name := range domain.RequiredFields {
		t.Run(name, func(t *testing.T) {
			f := validFields()
			f[name] = ""
			view := formview.New(f)
			b := okBackend()

			out := newController(view, b).HandleSubmit(context.Background())

			assert.False(t, out.Succeeded())
			assert.Equal(t, submission.MsgMissingField, out.Message)
			assert.ErrorIs(t, out.Err, domain.ErrMissingField)
			assert.Equal(t, name, view.Focused())
			assert.Zero(t, b.calls)
			assert.True(t, view.SubmitEnabled())
			assert.Equal(t, domain.StyleError, view.Status().Style)
		})
	}
}

func TestHandleSubmit_HoneypotBlocksBeforeValidation(t *testing.T) {
	view := formview.New(domain.FormFields{domain.FieldWebsite: "http://bot.example"})
	b := okBackend()

	out := newController(view, b).HandleSubmit(context.Background())

	assert.Equal(t, submission.MsgBlocked, out.Message)
	assert.ErrorIs(t, out.Err, domain.ErrSpamBlocked)
	assert.Empty(t, view.FocusHistory(), "honeypot must not reach field checks")
	assert.Zero(t, b.calls)
	assert.True(t, view.SubmitEnabled())
}

func TestHandleSubmit_DateAndTimeOrder(t *testing.T) {
	f := validFields()
	f[domain.FieldStartDate] = "2024-05-02"
	view := formview.New(f)
	b := okBackend()
	out := newController(view, b).HandleSubmit(context.Background())
	assert.Equal(t, submission.MsgDateOrder, out.Message)
	assert.Zero(t, b.calls)

	f = validFields()
	f[domain.FieldEndTime] = "08:00"
	view = formview.New(f)
	out = newController(view, b).HandleSubmit(context.Background())
	assert.Equal(t, submission.MsgTimeOrder, out.Message)
	assert.Zero(t, b.calls)
	assert.True(t, view.SubmitEnabled())
}

func TestHandleSubmit_NotConfigured(t *testing.T) {
	view := formview.New(validFields())
	b := &fakeBackend{configured: false}

	out := newController(view, b).HandleSubmit(context.Background())
	assert.Equal(t, submission.MsgNotConfigured, out.Message)
	assert.ErrorIs(t, out.Err, domain.ErrNotConfigured)
	assert.Zero(t, b.calls)

	// A nil backend is the same configuration error, not a crash.
	out = submission.New(view, nil, submission.WithLogger(quietLogger())).HandleSubmit(context.Background())
	assert.ErrorIs(t, out.Err, domain.ErrNotConfigured)
	assert.True(t, view.SubmitEnabled())
}

// ---------------------------------------------------------------------------
// Network paths
// ---------------------------------------------------------------------------

func TestHandleSubmit_SuccessResetsFormAndRotatesToken(t *testing.T) {
	view := formview.New(validFields())
	b := okBackend()
	ctl := newController(view, b, submission.WithQuotes(fixedQuotes("Not all who wander are lost.")))
	before := ctl.Init()
	require.NotEmpty(t, before)

	out := ctl.HandleSubmit(context.Background())

	require.True(t, out.Succeeded(), out.Message)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, before, b.got.Get(domain.FieldFormSecret), "posted token is the one issued at init")
	assert.Equal(t, "Ada Lovelace", b.got.Get(domain.FieldName))

	for _, name := range domain.RequiredFields {
		assert.Empty(t, view.FieldValue(name), "field %s not cleared", name)
	}
	after := view.FieldValue(domain.FieldFormSecret)
	assert.NotEmpty(t, after)
	assert.NotEqual(t, before, after)

	st := view.Status()
	assert.Equal(t, domain.StyleSuccess, st.Style)
	assert.Contains(t, st.Message, "Time off request submitted!")
	assert.Contains(t, st.Message, `"Not all who wander are lost."`)
	assert.Equal(t, submission.StateIdle, ctl.State())
}

func TestHandleSubmit_SuccessWithoutQuotes(t *testing.T) {
	view := formview.New(validFields())
	out := newController(view, okBackend()).HandleSubmit(context.Background())
	require.True(t, out.Succeeded())
	assert.NotContains(t, out.Message, `"`)
	assert.Contains(t, out.Message, "You will receive a confirmation shortly.")
}

func TestHandleSubmit_SubmitDisabledOnlyWhileSubmitting(t *testing.T) {
	view := formview.New(validFields())
	b := okBackend()
	ctl := newController(view, b)
	b.during = func() {
		assert.False(t, view.SubmitEnabled(), "submit must be disabled in flight")
		assert.Equal(t, submission.StateSubmitting, ctl.State())
		assert.Equal(t, domain.Status{Message: submission.MsgSubmitting}, view.Status())
	}

	ctl.HandleSubmit(context.Background())

	assert.Equal(t, []bool{false, true}, view.SubmitHistory())
	// First status change clears the previous message.
	assert.Equal(t, domain.Status{}, view.StatusHistory()[0])
}

func TestHandleSubmit_Failures(t *testing.T) {
	cases := []struct {
		name     string
		reply    domain.BackendReply
		err      error
		wantMsg  string
		wantKind domain.ErrorKind
	}{
		{"http 500", domain.BackendReply{}, &domain.HTTPStatusError{StatusCode: 500},
			"Submission failed: Request failed: 500", domain.KindHTTPStatus},
		{"app message", domain.BackendReply{Success: false, Message: "X"}, nil,
			"Submission failed: X", domain.KindApplication},
		{"app no message", domain.BackendReply{}, nil,
			"Submission failed: Unknown error", domain.KindApplication},
		{"transport", domain.BackendReply{}, &domain.TransportError{Err: errors.New("connection refused")},
			"Submission failed: connection refused", domain.KindTransport},
		{"malformed", domain.BackendReply{}, &domain.MalformedResponseError{Err: errors.New("unexpected EOF")},
			"Submission failed: invalid JSON response: unexpected EOF", domain.KindMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validFields()
			f[domain.FieldFormSecret] = "keep-me"
			view := formview.New(f)
			b := &fakeBackend{configured: true, reply: tc.reply, err: tc.err}

			out := newController(view, b).HandleSubmit(context.Background())

			assert.False(t, out.Succeeded())
			assert.Equal(t, tc.wantMsg, out.Message)
			assert.Equal(t, tc.wantKind, domain.KindOf(out.Err))
			assert.Equal(t, domain.Status{Message: tc.wantMsg, Style: domain.StyleError}, view.Status())
			assert.True(t, view.SubmitEnabled())
			// The form is kept for a retry.
			assert.Equal(t, "Ada Lovelace", view.FieldValue(domain.FieldName))
			assert.Equal(t, "keep-me", view.FieldValue(domain.FieldFormSecret))
		})
	}
}

func TestHandleSubmit_BusyWhileInFlight(t *testing.T) {
	view := formview.New(validFields())
	release := make(chan struct{})
	entered := make(chan struct{})
	b := okBackend()
	b.during = func() {
		close(entered)
		<-release
	}
	ctl := newController(view, b)

	done := make(chan domain.Outcome)
	go func() { done <- ctl.HandleSubmit(context.Background()) }()
	<-entered

	second := ctl.HandleSubmit(context.Background())
	assert.ErrorIs(t, second.Err, domain.ErrBusy)
	assert.False(t, view.SubmitEnabled(), "busy rejection must not re-enable submit")

	close(release)
	first := <-done
	assert.True(t, first.Succeeded())
	assert.True(t, view.SubmitEnabled())
	assert.Equal(t, 1, b.calls)
}

func TestHandleSubmit_PanicInTransportRestoresSubmit(t *testing.T) {
	view := formview.New(validFields())
	b := okBackend()
	b.during = func() { panic("transport exploded") }
	ctl := newController(view, b)

	func() {
		defer func() {
			assert.Equal(t, "transport exploded", recover())
		}()
		ctl.HandleSubmit(context.Background())
	}()

	assert.True(t, view.SubmitEnabled())
	assert.Equal(t, submission.StateIdle, ctl.State())

	b.during = nil
	next := ctl.HandleSubmit(context.Background())
	assert.NotErrorIs(t, next.Err, domain.ErrBusy)
	assert.True(t, next.Succeeded())
	assert.Equal(t, 2, b.calls)
}

func TestHandleSubmit_JournalsEveryOutcome(t *testing.T) {
	j := &memJournal{}
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	opts := []submission.Option{
		submission.WithJournal(j),
		submission.WithClock(func() time.Time { return at }),
		submission.WithTokens(&counterTokens{}),
	}

	bad := validFields()
	bad[domain.FieldReason] = ""
	newController(formview.New(bad), okBackend(), opts...).HandleSubmit(context.Background())
	newController(formview.New(validFields()), okBackend(), opts...).HandleSubmit(context.Background())

	require.Len(t, j.attempts, 2)
	assert.Equal(t, domain.KindMissingField, j.attempts[0].ErrorKind)
	assert.Equal(t, domain.OutcomeSuccess, j.attempts[1].Outcome)
	assert.Equal(t, "Family trip", j.attempts[1].Reason, "journal keeps the submitted values, not the reset ones")
	assert.Equal(t, at, j.attempts[1].CreatedAt)
}

func TestHandleSubmit_JournalErrorIsNotSurfaced(t *testing.T) {
	j := &memJournal{err: errors.New("disk full")}
	out := newController(formview.New(validFields()), okBackend(), submission.WithJournal(j)).
		HandleSubmit(context.Background())
	assert.True(t, out.Succeeded())
}

func TestInit_UsesTokenSource(t *testing.T) {
	view := formview.New(nil)
	ctl := newController(view, okBackend(), submission.WithTokens(&counterTokens{}))
	assert.Equal(t, "tok-1", ctl.Init())
	assert.Equal(t, "tok-1", view.FieldValue(domain.FieldFormSecret))
}
