package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/csg33k/timeoff-request/internal/adapters/sqlite"
	"github.com/csg33k/timeoff-request/internal/domain"
)

func openRepo(t *testing.T) *sqliteadapter.Repository {
	t.Helper()
	repo, err := sqliteadapter.New(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func attemptAt(at time.Time, o domain.Outcome) *domain.Attempt {
	return domain.NewAttempt(domain.FormFields{
		domain.FieldName:        "Ada Lovelace",
		domain.FieldEmail:       "ada@example.com",
		domain.FieldStartDate:   "2024-05-01",
		domain.FieldStartTime:   "09:00",
		domain.FieldEndDate:     "2024-05-03",
		domain.FieldEndTime:     "17:00",
		domain.FieldAbsenceType: "Vacation",
		domain.FieldReason:      "Family trip",
	}, o, at)
}

func TestRecordAndGet(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)

	a := attemptAt(at, domain.Success("Time off request submitted!"))
	require.NoError(t, repo.RecordAttempt(ctx, a))
	require.NotZero(t, a.ID)

	got, err := repo.GetAttempt(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "Family trip", got.Reason)
	assert.Equal(t, domain.OutcomeSuccess, got.Outcome)
	assert.Equal(t, domain.KindNone, got.ErrorKind)
	assert.True(t, at.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, at)
}

func TestGetMissing(t *testing.T) {
	_, err := openRepo(t).GetAttempt(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrAttemptMissing)
}

func TestListNewestFirst(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)

	fail := domain.Failure("Submission failed: Request failed: 500", &domain.HTTPStatusError{StatusCode: 500})
	require.NoError(t, repo.RecordAttempt(ctx, attemptAt(base, fail)))
	require.NoError(t, repo.RecordAttempt(ctx, attemptAt(base.Add(time.Minute), domain.Success("ok"))))
	require.NoError(t, repo.RecordAttempt(ctx, attemptAt(base.Add(2*time.Minute), domain.Success("ok"))))

	all, err := repo.ListAttempts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.Equal(t, domain.KindHTTPStatus, all[2].ErrorKind)
	assert.Equal(t, domain.OutcomeFailure, all[2].Outcome)

	two, err := repo.ListAttempts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	repo, err := sqliteadapter.New(path)
	require.NoError(t, err)
	require.NoError(t, repo.RecordAttempt(context.Background(), attemptAt(time.Now(), domain.Success("ok"))))
	require.NoError(t, repo.Close())

	repo, err = sqliteadapter.New(path)
	require.NoError(t, err)
	defer repo.Close()
	list, err := repo.ListAttempts(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNew_DSNWithQueryString(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "journal.db") + "?cache=shared"
	repo, err := sqliteadapter.New(dsn)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	a := attemptAt(time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC), domain.Success("ok"))
	require.NoError(t, repo.RecordAttempt(ctx, a))
	got, err := repo.GetAttempt(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
}
