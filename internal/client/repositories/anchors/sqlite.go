// Package anchors stores anchors in the client's SQLite database.
package anchors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
)

// Timestamps are stored as UTC unix nanoseconds.

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, user_id, intention_text, category, base_sigil_svg, reinforced_sigil_svg,
	enhanced_image_url, is_charged, charged_at, activation_count, last_activated_at,
	created_at, updated_at, version, deleted`

func (r *SQLiteRepository) Upsert(ctx context.Context, a *anchor.Anchor) error {
	query := `INSERT INTO anchors (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			intention_text = excluded.intention_text,
			category = excluded.category,
			base_sigil_svg = excluded.base_sigil_svg,
			reinforced_sigil_svg = excluded.reinforced_sigil_svg,
			enhanced_image_url = excluded.enhanced_image_url,
			is_charged = excluded.is_charged,
			charged_at = excluded.charged_at,
			activation_count = excluded.activation_count,
			last_activated_at = excluded.last_activated_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			version = excluded.version,
			deleted = excluded.deleted`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.IntentionText, string(a.Category), a.BaseSigilSVG,
		nullString(a.ReinforcedSigilSVG), nullString(a.EnhancedImageURL),
		a.IsCharged, nullTime(a.ChargedAt), a.ActivationCount, nullTime(a.LastActivatedAt),
		a.CreatedAt.UTC().UnixNano(), a.UpdatedAt.UTC().UnixNano(), a.Version, a.Deleted)
	if err != nil {
		return fmt.Errorf("upsert anchor: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*anchor.Anchor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM anchors WHERE id = ?`, id)
	a, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get anchor: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*anchor.Anchor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM anchors WHERE deleted = 0 ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}
	defer rows.Close()

	var result []*anchor.Anchor
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anchors: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) MaxVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM anchors`).Scan(&v); err != nil {
		return 0, fmt.Errorf("max anchor version: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM anchors`); err != nil {
		return fmt.Errorf("clear anchors: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*anchor.Anchor, error) {
	var (
		a                   anchor.Anchor
		category            string
		reinforced, image   sql.NullString
		chargedAt, lastAct  sql.NullInt64
		createdAt, updateAt int64
	)
	err := s.Scan(&a.ID, &a.UserID, &a.IntentionText, &category, &a.BaseSigilSVG,
		&reinforced, &image, &a.IsCharged, &chargedAt, &a.ActivationCount, &lastAct,
		&createdAt, &updateAt, &a.Version, &a.Deleted)
	if err != nil {
		return nil, err
	}
	a.Category = anchor.Category(category)
	a.ReinforcedSigilSVG = fromNullString(reinforced)
	a.EnhancedImageURL = fromNullString(image)
	a.ChargedAt = fromNullTime(chargedAt)
	a.LastActivatedAt = fromNullTime(lastAct)
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	a.UpdatedAt = time.Unix(0, updateAt).UTC()
	return &a, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixNano(), Valid: true}
}

func fromNullTime(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64).UTC()
	return &t
}
