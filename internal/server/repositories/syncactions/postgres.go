package syncactions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record must run in the transaction that applies the action; a rollback
// forgets the id again.
func (r *PostgresRepository) Record(ctx context.Context, userID, actionID string) (bool, error) {
	query := `
		INSERT INTO sync_actions (user_id, action_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, action_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, userID, actionID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
