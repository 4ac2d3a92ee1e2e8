// Package actions keeps the queue of pending sync actions in SQLite.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, a *anchor.Action) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pending_actions (id, anchor_id, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, a.ID, a.AnchorID, string(a.Kind), payload, a.CreatedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("enqueue action: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*anchor.Action, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM pending_actions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var result []*anchor.Action
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a := &anchor.Action{}
		if err := json.Unmarshal(payload, a); err != nil {
			return nil, fmt.Errorf("decode action: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("delete actions: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_actions`); err != nil {
		return fmt.Errorf("clear actions: %w", err)
	}
	return nil
}
