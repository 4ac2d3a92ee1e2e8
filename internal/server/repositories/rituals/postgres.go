package rituals

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts e and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, e *models.RitualEvent) error {
	query := `
		INSERT INTO ritual_events (anchor_id, user_id, kind, ritual_type, duration_seconds)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, e.AnchorID, e.UserID, e.Kind, e.RitualType, e.DurationSeconds).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByAnchor(ctx context.Context, userID, anchorID string) ([]*models.RitualEvent, error) {
	query := `
		SELECT id, anchor_id, kind, ritual_type, duration_seconds, created_at
		FROM ritual_events
		WHERE user_id = $1 AND anchor_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID, anchorID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ritual events: %w", err)
	}
	defer rows.Close()

	result := []*models.RitualEvent{}
	for rows.Next() {
		e := &models.RitualEvent{UserID: userID}
		if err := rows.Scan(&e.ID, &e.AnchorID, &e.Kind, &e.RitualType, &e.DurationSeconds, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
