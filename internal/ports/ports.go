package ports

import (
	"context"
	"io"

	"github.com/csg33k/timeoff-request/internal/domain"
)

// FormView is the capability set the submission controller drives. The web
// page state, the terminal session and the in-memory test view all satisfy it.
type FormView interface {
	FieldValue(name string) string
	SetFieldValue(name, value string)
	FocusField(name string)
	SetStatus(s domain.Status)
	SetSubmitEnabled(enabled bool)
}

// Backend posts a completed form to the remote endpoint.
type Backend interface {
	// Configured reports whether an endpoint URL is set.
	Configured() bool

	// Submit sends every field and decodes the 2xx reply. Non-2xx statuses,
	// transport failures and non-JSON bodies come back as errors.
	Submit(ctx context.Context, fields domain.FormFields) (domain.BackendReply, error)
}

// TokenSource issues anti-automation tokens.
type TokenSource interface {
	// Next returns a fresh token. prev is the token being replaced, or "" on
	// first issue; sources that track tokens retire it.
	Next(prev string) string
}

// QuoteSource picks the quote shown with a success message.
type QuoteSource interface {
	Random() string
}

// AttemptJournal defines persistence for submission attempts.
type AttemptJournal interface {
	RecordAttempt(ctx context.Context, a *domain.Attempt) error
	GetAttempt(ctx context.Context, id int64) (*domain.Attempt, error)
	ListAttempts(ctx context.Context, limit int) ([]domain.Attempt, error)
}

// ReceiptGenerator renders a printable receipt for a successful attempt.
type ReceiptGenerator interface {
	Generate(ctx context.Context, a *domain.Attempt, w io.Writer) error
}
