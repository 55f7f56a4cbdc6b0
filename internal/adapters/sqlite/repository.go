package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/timeoff-request/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Repository struct {
	db *sql.DB
}

// New opens the SQLite journal and applies the "migrate:up" sections of the
// bundled dbmate migrations. They are idempotent, so running `dbmate up`
// against the same file is also fine.
func New(dsn string) (*Repository, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	r := &Repository{db: db}
	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, upSection(string(data))); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// upSection returns the statements between "-- migrate:up" and
// "-- migrate:down".
func upSection(src string) string {
	if _, after, ok := strings.Cut(src, "-- migrate:up"); ok {
		src = after
	}
	before, _, _ := strings.Cut(src, "-- migrate:down")
	return before
}

// ── Attempts ─────────────────────────────────────────────────────────────────

func (r *Repository) RecordAttempt(ctx context.Context, a *domain.Attempt) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (
			name, email, start_date, start_time, end_date, end_time,
			absence_type, reason, outcome, error_kind, message, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.Name, a.Email, a.StartDate, a.StartTime, a.EndDate, a.EndTime,
		a.AbsenceType, a.Reason, a.Outcome.String(), string(a.ErrorKind), a.Message,
		a.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	a.ID = id
	return nil
}

func (r *Repository) GetAttempt(ctx context.Context, id int64) (*domain.Attempt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, start_date, start_time, end_date, end_time,
		       absence_type, reason, outcome, error_kind, message, created_at
		FROM attempts WHERE id=?`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %d: %w", id, domain.ErrAttemptMissing)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAttempts returns the newest attempts first. limit <= 0 means no limit.
func (r *Repository) ListAttempts(ctx context.Context, limit int) ([]domain.Attempt, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, start_date, start_time, end_date, end_time,
		       absence_type, reason, outcome, error_kind, message, created_at
		FROM attempts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (*domain.Attempt, error) {
	a := &domain.Attempt{}
	var outcome, kind string
	if err := s.Scan(
		&a.ID, &a.Name, &a.Email, &a.StartDate, &a.StartTime, &a.EndDate, &a.EndTime,
		&a.AbsenceType, &a.Reason, &outcome, &kind, &a.Message, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if outcome == domain.OutcomeSuccess.String() {
		a.Outcome = domain.OutcomeSuccess
	}
	a.ErrorKind = domain.ErrorKind(kind)
	return a, nil
}
