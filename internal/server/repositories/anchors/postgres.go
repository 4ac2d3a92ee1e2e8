package anchors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
)

const columns = `id, user_id, intention_text, category, base_sigil_svg, reinforced_sigil_svg,
	enhanced_image_url, is_charged, charged_at, activation_count, last_activated_at,
	created_at, updated_at, version, deleted`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnchor(s scanner) (*anchor.Anchor, error) {
	var (
		a          anchor.Anchor
		reinforced sql.NullString
		imageURL   sql.NullString
		chargedAt  sql.NullTime
		activated  sql.NullTime
	)
	err := s.Scan(&a.ID, &a.UserID, &a.IntentionText, &a.Category, &a.BaseSigilSVG, &reinforced,
		&imageURL, &a.IsCharged, &chargedAt, &a.ActivationCount, &activated,
		&a.CreatedAt, &a.UpdatedAt, &a.Version, &a.Deleted)
	if err != nil {
		return nil, err
	}
	if reinforced.Valid {
		a.ReinforcedSigilSVG = &reinforced.String
	}
	if imageURL.Valid {
		a.EnhancedImageURL = &imageURL.String
	}
	if chargedAt.Valid {
		t := chargedAt.Time.UTC()
		a.ChargedAt = &t
	}
	if activated.Valid {
		t := activated.Time.UTC()
		a.LastActivatedAt = &t
	}
	return &a, nil
}

func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, a *anchor.Anchor) error {
	query := `
		INSERT INTO anchors (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id)
		DO UPDATE SET
			intention_text = EXCLUDED.intention_text,
			category = EXCLUDED.category,
			base_sigil_svg = EXCLUDED.base_sigil_svg,
			reinforced_sigil_svg = EXCLUDED.reinforced_sigil_svg,
			enhanced_image_url = EXCLUDED.enhanced_image_url,
			is_charged = EXCLUDED.is_charged,
			charged_at = EXCLUDED.charged_at,
			activation_count = EXCLUDED.activation_count,
			last_activated_at = EXCLUDED.last_activated_at,
			updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version,
			deleted = EXCLUDED.deleted
			WHERE anchors.user_id = EXCLUDED.user_id
	`
	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.IntentionText, a.Category, a.BaseSigilSVG, a.ReinforcedSigilSVG,
		a.EnhancedImageURL, a.IsCharged, a.ChargedAt, a.ActivationCount, a.LastActivatedAt,
		a.CreatedAt, a.UpdatedAt, a.Version, a.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*anchor.Anchor, error) {
	query := `SELECT ` + columns + ` FROM anchors WHERE id = $1 AND user_id = $2`
	a, err := scanAnchor(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: anchor %s", common.ErrorNotFound, id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*anchor.Anchor, error) {
	query := `SELECT ` + columns + ` FROM anchors
		WHERE user_id = $1 AND NOT deleted
		ORDER BY created_at DESC`
	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, minVersion int64) ([]*anchor.Anchor, error) {
	query := `SELECT ` + columns + ` FROM anchors
		WHERE user_id = $1 AND version > $2
		ORDER BY version`
	return r.query(ctx, query, userID, minVersion)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*anchor.Anchor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select anchors: %w", err)
	}
	defer rows.Close()

	result := []*anchor.Anchor{}
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
