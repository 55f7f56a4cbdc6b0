package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/timeoff-request/internal/adapters/pdf"
	"github.com/csg33k/timeoff-request/internal/domain"
)

func submitted() *domain.Attempt {
	return &domain.Attempt{
		ID:          7,
		Name:        "Zoë Ångström",
		Email:       "zoe@example.com",
		StartDate:   "2024-05-01",
		StartTime:   "09:00",
		EndDate:     "2024-05-03",
		EndTime:     "17:00",
		AbsenceType: "Vacation",
		Reason:      "Family trip — long weekend",
		Outcome:     domain.OutcomeSuccess,
		CreatedAt:   time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestGenerate_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, pdf.New().Generate(context.Background(), submitted(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "missing PDF header")
	assert.Greater(t, buf.Len(), 500)
}

func TestGenerate_RefusesFailedAttempts(t *testing.T) {
	a := submitted()
	a.Outcome = domain.OutcomeFailure
	err := pdf.New().Generate(context.Background(), a, &bytes.Buffer{})
	assert.ErrorIs(t, err, pdf.ErrNotSubmitted)
}

func TestGenerate_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pdf.New().Generate(ctx, submitted(), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
