// Package store persists enrollment state and request outcomes in PostgreSQL
// using pgx directly.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rhyrak/go-enroll/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS enrollments (
	student_id   TEXT NOT NULL,
	student_name TEXT NOT NULL,
	course_id    TEXT NOT NULL,
	section_id   TEXT NOT NULL,
	position     INTEGER NOT NULL,
	PRIMARY KEY (student_id, course_id)
);
CREATE TABLE IF NOT EXISTS request_outcomes (
	seq         BIGSERIAL,
	request_id  TEXT PRIMARY KEY,
	student_id  TEXT NOT NULL,
	course_id   TEXT NOT NULL,
	section_id  TEXT NOT NULL,
	reason      TEXT NOT NULL,
	decided_at  TIMESTAMPTZ NOT NULL
);`

// NewPool creates and validates a connection pool. It retries a few times
// to let a database container finish starting.
func NewPool(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("db connect failed", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// EnrollmentStore reads and writes the enrollment rows of a directory.
type EnrollmentStore struct {
	db *pgxpool.Pool
}

func NewEnrollmentStore(db *pgxpool.Pool) *EnrollmentStore {
	return &EnrollmentStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *EnrollmentStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load returns every enrollment row in the order it was saved.
func (s *EnrollmentStore) Load(ctx context.Context) ([]*model.EnrollmentCSVRow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT student_id, student_name, course_id, section_id
		 FROM enrollments
		 ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*model.EnrollmentCSVRow
	for rows.Next() {
		var e model.EnrollmentCSVRow
		if err := rows.Scan(&e.StudentID, &e.StudentName, &e.CourseID, &e.SectionID); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

// Replace swaps the stored enrollments for rows in a single transaction.
func (s *EnrollmentStore) Replace(ctx context.Context, rows []*model.EnrollmentCSVRow) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM enrollments`); err != nil {
		return fmt.Errorf("clear enrollments: %w", err)
	}
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{r.StudentID, r.StudentName, r.CourseID, r.SectionID, int32(i)}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"enrollments"},
		[]string{"student_id", "student_name", "course_id", "section_id", "position"},
		pgx.CopyFromRows(values),
	)
	if err != nil {
		return fmt.Errorf("copy enrollments: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecordOutcomes appends decided requests to the outcome log. Outcomes
// already recorded are left untouched.
func (s *EnrollmentStore) RecordOutcomes(ctx context.Context, outcomes []model.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, o := range outcomes {
		batch.Queue(
			`INSERT INTO request_outcomes (request_id, student_id, course_id, section_id, reason, decided_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (request_id) DO NOTHING`,
			o.Request.ID, o.Request.StudentID, o.Request.Desired.CourseID, o.Request.Desired.SectionID, string(o.Reason), now,
		)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("record outcomes: %w", err)
	}
	return nil
}

// Outcomes returns the logged outcomes of one reason, oldest first.
func (s *EnrollmentStore) Outcomes(ctx context.Context, reason model.Reason) ([]model.Outcome, error) {
	rows, err := s.db.Query(ctx,
		`SELECT request_id, student_id, course_id, section_id, reason
		 FROM request_outcomes
		 WHERE reason = $1
		 ORDER BY seq`,
		string(reason),
	)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []model.Outcome
	for rows.Next() {
		var o model.Outcome
		var r string
		if err := rows.Scan(&o.Request.ID, &o.Request.StudentID, &o.Request.Desired.CourseID, &o.Request.Desired.SectionID, &r); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Reason = model.Reason(r)
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
