package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateExclusion inserts an exclusion term. Adding a term that already
// exists upgrades a pending suggestion to the new source; otherwise it is a
// no-op.
func (db *DB) CreateExclusion(ctx context.Context, e *Exclusion) error {
	e.Term = strings.TrimSpace(e.Term)
	if e.Term == "" {
		return errors.New("exclusion term must not be empty")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Source == "" {
		e.Source = ExclusionSourceUser
	}
	e.CreatedAt = time.Now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO exclusions (id, term, source, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(term) DO UPDATE SET
			source = excluded.source
		WHERE exclusions.source = 'suggested'
	`, e.ID, e.Term, e.Source, e.CreatedAt)
	return err
}

// ExclusionExists reports whether a term is stored in any form
func (db *DB) ExclusionExists(ctx context.Context, term string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exclusions WHERE term = ?
	`, strings.TrimSpace(term)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListExclusions returns exclusions, optionally restricted to one source
func (db *DB) ListExclusions(ctx context.Context, source *string) ([]Exclusion, error) {
	query := `SELECT id, term, source, created_at FROM exclusions WHERE 1=1`
	args := []interface{}{}

	if source != nil {
		query += " AND source = ?"
		args = append(args, *source)
	}
	query += " ORDER BY term"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exclusions []Exclusion
	for rows.Next() {
		e := Exclusion{}
		if err := rows.Scan(&e.ID, &e.Term, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		exclusions = append(exclusions, e)
	}
	return exclusions, rows.Err()
}

// ActiveExclusionTerms returns the terms that should filter candidates:
// user-added and confirmed suggestions.
func (db *DB) ActiveExclusionTerms(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT term FROM exclusions
		WHERE source = ? OR source = ?
		ORDER BY term
	`, ExclusionSourceUser, ExclusionSourceConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// DeleteExclusion removes an exclusion by ID or term
func (db *DB) DeleteExclusion(ctx context.Context, idOrTerm string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM exclusions WHERE id = ? OR term = ?`, idOrTerm, idOrTerm)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrExclusionNotFound, idOrTerm)
	}
	return nil
}

// ApproveExclusion turns a suggestion into an active exclusion
func (db *DB) ApproveExclusion(ctx context.Context, idOrTerm string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE exclusions SET source = ? WHERE (id = ? OR term = ?) AND source = ?
	`, ExclusionSourceConfirmed, idOrTerm, idOrTerm, ExclusionSourceSuggested)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		exists, err := db.ExclusionExists(ctx, idOrTerm)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrNotSuggestion, idOrTerm)
		}
		return fmt.Errorf("%w: %s", ErrExclusionNotFound, idOrTerm)
	}
	return nil
}

// GetExclusion retrieves an exclusion by ID
func (db *DB) GetExclusion(ctx context.Context, id string) (*Exclusion, error) {
	e := &Exclusion{}
	err := db.QueryRowContext(ctx, `
		SELECT id, term, source, created_at FROM exclusions WHERE id = ?
	`, id).Scan(&e.ID, &e.Term, &e.Source, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExclusionNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
