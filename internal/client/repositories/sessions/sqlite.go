// Package sessions stores the ritual session log in SQLite.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e *anchor.SessionLogEntry) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO session_log (anchor_id, type, duration_seconds, mode, completed_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.AnchorID, string(e.Type), e.DurationSeconds, e.Mode, e.CompletedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	e.ID = id
	return nil
}

const selectEntry = `SELECT id, anchor_id, type, duration_seconds, mode, completed_at FROM session_log`

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*anchor.SessionLogEntry, error) {
	var (
		e           anchor.SessionLogEntry
		typ         string
		completedAt int64
	)
	if err := s.Scan(&e.ID, &e.AnchorID, &typ, &e.DurationSeconds, &e.Mode, &completedAt); err != nil {
		return nil, err
	}
	e.Type = anchor.SessionType(typ)
	e.CompletedAt = time.Unix(0, completedAt).UTC()
	return &e, nil
}

func (r *SQLiteRepository) Last(ctx context.Context) (*anchor.SessionLogEntry, error) {
	row := r.db.QueryRowContext(ctx, selectEntry+` ORDER BY completed_at DESC, id DESC LIMIT 1`)
	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last session: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListByAnchor(ctx context.Context, anchorID string) ([]*anchor.SessionLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectEntry+` WHERE anchor_id = ? ORDER BY completed_at DESC, id DESC`, anchorID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var result []*anchor.SessionLogEntry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_log`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}
