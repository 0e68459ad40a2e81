package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const runColumns = `id, topic, mode, status, provider, final_stage, min_results, max_results,
	candidate_count, result_count, quick_win_count, created_at`

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// CreateRun inserts a new research run
func (db *DB) CreateRun(ctx context.Context, r *Run) error {
	return insertRun(ctx, db.DB, r)
}

// SaveRunResult stores a run with its keywords and optional brief in a
// single transaction. Nothing is kept if any write fails.
func (db *DB) SaveRunResult(ctx context.Context, r *Run, keywords []RunKeyword, b *Brief) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := insertRun(ctx, tx, r); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		if err := replaceRunKeywords(ctx, tx, r.ID, keywords); err != nil {
			return fmt.Errorf("failed to save keywords: %w", err)
		}
		if b != nil {
			b.RunID = r.ID
			if err := upsertBrief(ctx, tx, b); err != nil {
				return fmt.Errorf("failed to save brief: %w", err)
			}
		}
		return nil
	})
}

func insertRun(ctx context.Context, ex execer, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO research_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Topic, r.Mode, r.Status, r.Provider, r.FinalStage, r.MinResults, r.MaxResults,
		r.CandidateCount, r.ResultCount, r.QuickWinCount, r.CreatedAt,
	)
	return err
}

// GetRun retrieves a run by ID. A unique ID prefix is accepted as well.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM research_runs
		WHERE id = ? OR id LIKE ?
		ORDER BY id = ? DESC
		LIMIT 2
	`, id, id+"%", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, ErrRunNotFound
	case runs[0].ID == id, len(runs) == 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
}

// ListRuns retrieves runs with optional filters, newest first
func (db *DB) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM research_runs WHERE 1=1`
	args := []interface{}{}

	if opts.Topic != nil {
		query += " AND LOWER(topic) LIKE LOWER(?)"
		args = append(args, "%"+*opts.Topic+"%")
	}
	if opts.Mode != nil {
		query += " AND mode = ?"
		args = append(args, *opts.Mode)
	}
	if opts.Status != nil {
		query += " AND status = ?"
		args = append(args, *opts.Status)
	}
	if opts.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, *opts.Since)
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
		if opts.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", opts.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		r := Run{}
		if err := rows.Scan(
			&r.ID, &r.Topic, &r.Mode, &r.Status, &r.Provider, &r.FinalStage, &r.MinResults, &r.MaxResults,
			&r.CandidateCount, &r.ResultCount, &r.QuickWinCount, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run together with its keywords and brief
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM research_runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRunNotFound
	}
	return nil
}

// SaveRunKeywords replaces the stored keywords of a run
func (db *DB) SaveRunKeywords(ctx context.Context, runID string, keywords []RunKeyword) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		return replaceRunKeywords(ctx, tx, runID, keywords)
	})
}

func replaceRunKeywords(ctx context.Context, ex execer, runID string, keywords []RunKeyword) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM run_keywords WHERE run_id = ?`, runID); err != nil {
		return err
	}

	stmt, err := ex.PrepareContext(ctx, `
		INSERT INTO run_keywords (
			run_id, rank, keyword, volume, competition, cpc, source,
			final_score, score, level, intent, is_quick_win, components
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range keywords {
		k := &keywords[i]
		k.RunID = runID
		if k.Rank == 0 {
			k.Rank = i + 1
		}

		components, err := json.Marshal(k.Components)
		if err != nil {
			return fmt.Errorf("failed to encode components: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			runID, k.Rank, k.Keyword, k.Volume, k.Competition, k.CPC, NullString(k.Source),
			k.FinalScore, k.Score, k.Level, k.Intent, k.IsQuickWin, string(components),
		); err != nil {
			return fmt.Errorf("failed to insert keyword %q: %w", k.Keyword, err)
		}
	}
	return nil
}

// ListRunKeywords returns a run's keywords in rank order
func (db *DB) ListRunKeywords(ctx context.Context, runID string) ([]RunKeyword, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, rank, keyword, volume, competition, cpc, source,
		       final_score, score, level, intent, is_quick_win, components
		FROM run_keywords WHERE run_id = ?
		ORDER BY rank
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKeywords(rows)
}

func scanKeywords(rows *sql.Rows) ([]RunKeyword, error) {
	var keywords []RunKeyword
	for rows.Next() {
		k := RunKeyword{}
		var source sql.NullString
		var components string

		if err := rows.Scan(
			&k.RunID, &k.Rank, &k.Keyword, &k.Volume, &k.Competition, &k.CPC, &source,
			&k.FinalScore, &k.Score, &k.Level, &k.Intent, &k.IsQuickWin, &components,
		); err != nil {
			return nil, err
		}

		k.Source = StringPtr(source)
		if err := json.Unmarshal([]byte(components), &k.Components); err != nil {
			return nil, fmt.Errorf("failed to decode components: %w", err)
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// SaveBrief stores or replaces the brief for a run
func (db *DB) SaveBrief(ctx context.Context, b *Brief) error {
	return upsertBrief(ctx, db.DB, b)
}

func upsertBrief(ctx context.Context, ex execer, b *Brief) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO briefs (run_id, keyword, source, markdown, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			keyword = excluded.keyword,
			source = excluded.source,
			markdown = excluded.markdown,
			created_at = excluded.created_at
	`, b.RunID, b.Keyword, b.Source, b.Markdown, b.CreatedAt)
	return err
}

// GetBrief retrieves the brief for a run
func (db *DB) GetBrief(ctx context.Context, runID string) (*Brief, error) {
	b := &Brief{}
	err := db.QueryRowContext(ctx, `
		SELECT run_id, keyword, source, markdown, created_at
		FROM briefs WHERE run_id = ?
	`, runID).Scan(&b.RunID, &b.Keyword, &b.Source, &b.Markdown, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBriefNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetStats retrieves aggregate statistics
func (db *DB) GetStats(ctx context.Context, since *time.Time) (*Stats, error) {
	stats := &Stats{RunsByMode: map[string]int{}}

	whereClause := ""
	args := []interface{}{}
	if since != nil {
		whereClause = "WHERE created_at >= ?"
		args = append(args, *since)
	}

	// Run counts by status
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN status = 'complete' THEN 1 ELSE 0 END), 0) as complete,
			COALESCE(SUM(CASE WHEN status = 'degraded' THEN 1 ELSE 0 END), 0) as degraded
		FROM research_runs %s
	`, whereClause)

	if err := db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalRuns, &stats.CompleteRuns, &stats.DegradedRuns,
	); err != nil {
		return nil, err
	}

	// Runs by mode
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT mode, COUNT(*) FROM research_runs %s GROUP BY mode
	`, whereClause), args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var mode string
		var count int
		if err := rows.Scan(&mode, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.RunsByMode[mode] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Keyword aggregates
	keywordWhere := ""
	if since != nil {
		keywordWhere = "WHERE r.created_at >= ?"
	}
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(k.is_quick_win), 0), COALESCE(AVG(k.final_score), 0)
		FROM run_keywords k JOIN research_runs r ON r.id = k.run_id %s
	`, keywordWhere), args...).Scan(&stats.TotalKeywords, &stats.QuickWins, &stats.AvgScore); err != nil {
		return nil, err
	}

	if err := db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM briefs b JOIN research_runs r ON r.id = b.run_id %s
	`, keywordWhere), args...).Scan(&stats.Briefs); err != nil {
		return nil, err
	}

	// Best keywords seen
	topRows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT k.run_id, k.rank, k.keyword, k.volume, k.competition, k.cpc, k.source,
		       k.final_score, k.score, k.level, k.intent, k.is_quick_win, k.components
		FROM run_keywords k JOIN research_runs r ON r.id = k.run_id %s
		ORDER BY k.final_score DESC LIMIT 5
	`, keywordWhere), args...)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()

	stats.TopKeywords, err = scanKeywords(topRows)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
