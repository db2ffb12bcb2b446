package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one recorded round trip.
type Entry struct {
	ID       int64
	AskedAt  time.Time
	Source   string
	Model    string
	TabCount int
	Query    string
	Answer   string
	Error    string
	Target   *int // 0-based index of the opened tab; nil if none
	TabTitle string
	TabURL   string
}

// History records queries in the database. A nil *History records nothing,
// which is how history stays off unless the user asks for it.
type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Record inserts e and returns its row ID. AskedAt defaults to now.
func (h *History) Record(ctx context.Context, e Entry) (int64, error) {
	if h == nil {
		return 0, nil
	}
	if e.AskedAt.IsZero() {
		e.AskedAt = time.Now()
	}
	var target sql.NullInt64
	if e.Target != nil {
		target = sql.NullInt64{Int64: int64(*e.Target), Valid: true}
	}
	res, err := h.db.ExecContext(ctx, `INSERT INTO queries
		(asked_at, source, model, tab_count, query, answer, error, target_index, target_title, target_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.AskedAt.UTC(), e.Source, e.Model, e.TabCount, e.Query, e.Answer, e.Error, target, e.TabTitle, e.TabURL)
	if err != nil {
		return 0, fmt.Errorf("insert query: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (h *History) List(ctx context.Context, limit int) ([]Entry, error) {
	if h == nil {
		return nil, nil
	}
	q := `SELECT id, asked_at, source, model, tab_count, query, answer, error, target_index, target_title, target_url
		FROM queries ORDER BY asked_at DESC, id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := h.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var target sql.NullInt64
		if err := rows.Scan(&e.ID, &e.AskedAt, &e.Source, &e.Model, &e.TabCount,
			&e.Query, &e.Answer, &e.Error, &target, &e.TabTitle, &e.TabURL); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		if target.Valid {
			idx := int(target.Int64)
			e.Target = &idx
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear deletes every recorded entry and returns how many were removed.
func (h *History) Clear(ctx context.Context) (int64, error) {
	if h == nil {
		return 0, nil
	}
	res, err := h.db.ExecContext(ctx, "DELETE FROM queries")
	if err != nil {
		return 0, fmt.Errorf("clear queries: %w", err)
	}
	return res.RowsAffected()
}
