package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/db"
)

const candidateColumns = `id, name, email, phone, linkedin, location, current_company,
	designation, total_experience, last_salary, salary_expectation, qualification,
	notes, change_history, created_by, created_by_name, created_at, updated_at`

// SQLRepository stores candidates in Postgres or SQLite
type SQLRepository struct {
	conn   *db.Connection
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLRepository creates a repository over an open connection. Call Migrate
// before first use on a fresh database.
func NewSQLRepository(conn *db.Connection, logger *slog.Logger) *SQLRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLRepository{conn: conn, logger: logger, now: time.Now}
}

// Migrate creates the candidates table if it does not exist
func (r *SQLRepository) Migrate(ctx context.Context) error {
	ts := r.conn.TimestampType()
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			id                 TEXT PRIMARY KEY,
			name               TEXT NOT NULL DEFAULT '',
			email              TEXT NOT NULL DEFAULT '',
			phone              TEXT NOT NULL DEFAULT '',
			linkedin           TEXT NOT NULL DEFAULT '',
			location           TEXT NOT NULL DEFAULT '',
			current_company    TEXT NOT NULL DEFAULT '',
			designation        TEXT NOT NULL DEFAULT '',
			total_experience   TEXT NOT NULL DEFAULT '',
			last_salary        TEXT NOT NULL DEFAULT '',
			salary_expectation TEXT NOT NULL DEFAULT '',
			qualification      TEXT NOT NULL DEFAULT '',
			notes              TEXT NOT NULL DEFAULT '[]',
			change_history     TEXT NOT NULL DEFAULT '[]',
			created_by         TEXT NOT NULL DEFAULT '',
			created_by_name    TEXT NOT NULL DEFAULT '',
			created_at         ` + ts + ` NOT NULL,
			updated_at         ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_email ON candidates (email)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_phone ON candidates (phone)`,
	}
	for _, stmt := range stmts {
		if _, err := r.conn.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating candidates schema: %w", err)
		}
	}
	return nil
}

// List returns all candidates ordered by creation time
func (r *SQLRepository) List(ctx context.Context) ([]candidate.Candidate, error) {
	rows, err := r.conn.DB.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []candidate.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return out, nil
}

// Get returns the candidate with id or candidate.ErrNotFound
func (r *SQLRepository) Get(ctx context.Context, id string) (candidate.Candidate, error) {
	row := r.conn.DB.QueryRowContext(ctx,
		r.conn.Rebind(`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`), id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return candidate.Candidate{}, fmt.Errorf("%s: %w", id, candidate.ErrNotFound)
	}
	return c, err
}

// Create inserts c, assigning an ID and timestamps when they are unset
func (r *SQLRepository) Create(ctx context.Context, c candidate.Candidate) (candidate.Candidate, error) {
	c = c.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	notes, history, err := encodeCollections(c)
	if err != nil {
		return candidate.Candidate{}, err
	}

	_, err = r.conn.DB.ExecContext(ctx, r.conn.Rebind(`INSERT INTO candidates (`+candidateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.Name, c.Email, c.Phone, c.LinkedIn, c.Location, c.CurrentCompany,
		c.Designation, c.TotalExperience, c.LastSalary, c.SalaryExpectation, c.Qualification,
		notes, history, c.CreatedBy, c.CreatedByName, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return candidate.Candidate{}, fmt.Errorf("failed to insert candidate %s: %w", c.ID, err)
	}

	r.logger.Debug("candidate created", "id", c.ID)
	return c, nil
}

// Update replaces every stored field of c. Returns candidate.ErrNotFound if
// no row has c.ID.
func (r *SQLRepository) Update(ctx context.Context, c candidate.Candidate) error {
	return r.update(ctx, r.conn.DB, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLRepository) update(ctx context.Context, ex execer, c candidate.Candidate) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = r.now().UTC()
	}
	notes, history, err := encodeCollections(c)
	if err != nil {
		return err
	}

	res, err := ex.ExecContext(ctx, r.conn.Rebind(`UPDATE candidates SET
			name = ?, email = ?, phone = ?, linkedin = ?, location = ?, current_company = ?,
			designation = ?, total_experience = ?, last_salary = ?, salary_expectation = ?,
			qualification = ?, notes = ?, change_history = ?, updated_at = ?
		WHERE id = ?`),
		c.Name, c.Email, c.Phone, c.LinkedIn, c.Location, c.CurrentCompany,
		c.Designation, c.TotalExperience, c.LastSalary, c.SalaryExpectation,
		c.Qualification, notes, history, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update candidate %s: %w", c.ID, err)
	}
	return requireOneRow(res, c.ID)
}

// Delete removes the candidate with id
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	if err := r.delete(ctx, r.conn.DB, id); err != nil {
		return err
	}
	r.logger.Debug("candidate deleted", "id", id)
	return nil
}

func (r *SQLRepository) delete(ctx context.Context, ex execer, id string) error {
	res, err := ex.ExecContext(ctx, r.conn.Rebind(`DELETE FROM candidates WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate %s: %w", id, err)
	}
	return requireOneRow(res, id)
}

// ReplaceMerged updates the merged primary and deletes the duplicate in one
// transaction. Nothing is written unless both rows exist.
func (r *SQLRepository) ReplaceMerged(ctx context.Context, merged candidate.Candidate, duplicateID string) error {
	tx, err := r.conn.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning merge transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.update(ctx, tx, merged); err != nil {
		return err
	}
	if err := r.delete(ctx, tx, duplicateID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing merge of %s into %s: %w", duplicateID, merged.ID, err)
	}

	r.logger.Debug("candidates merged", "primary", merged.ID, "duplicate", duplicateID)
	return nil
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows for %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, candidate.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCandidate(s scanner) (candidate.Candidate, error) {
	var c candidate.Candidate
	var notes, history string
	err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.LinkedIn, &c.Location, &c.CurrentCompany,
		&c.Designation, &c.TotalExperience, &c.LastSalary, &c.SalaryExpectation, &c.Qualification,
		&notes, &history, &c.CreatedBy, &c.CreatedByName, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("failed to scan candidate: %w", err)
	}
	if err := json.Unmarshal([]byte(notes), &c.Notes); err != nil {
		return c, fmt.Errorf("candidate %s: decoding notes: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(history), &c.ChangeHistory); err != nil {
		return c, fmt.Errorf("candidate %s: decoding change history: %w", c.ID, err)
	}
	return c, nil
}

func encodeCollections(c candidate.Candidate) (string, string, error) {
	notes := c.Notes
	if notes == nil {
		notes = []candidate.Note{}
	}
	history := c.ChangeHistory
	if history == nil {
		history = []candidate.ChangeEntry{}
	}
	n, err := json.Marshal(notes)
	if err != nil {
		return "", "", fmt.Errorf("encoding notes: %w", err)
	}
	h, err := json.Marshal(history)
	if err != nil {
		return "", "", fmt.Errorf("encoding change history: %w", err)
	}
	return string(n), string(h), nil
}
