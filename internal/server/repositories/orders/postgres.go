package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o *anchor.Order) error {
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("encode shipping: %w", err)
	}
	query := `
		INSERT INTO orders (user_id, anchor_id, product, size, quantity, shipping, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	if o.Status == "" {
		o.Status = anchor.OrderStatusPending
	}
	err = r.db.QueryRowContext(ctx, query, o.UserID, o.AnchorID, o.Product, o.Size, o.Quantity, shipping, o.Status).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*anchor.Order, error) {
	query := `
		SELECT id, user_id, anchor_id, product, size, quantity, shipping, status, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`
	var (
		o        anchor.Order
		shipping []byte
	)
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&o.ID, &o.UserID, &o.AnchorID, &o.Product, &o.Size, &o.Quantity, &shipping, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", common.ErrorNotFound, id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return nil, fmt.Errorf("decode shipping: %w", err)
	}
	return &o, nil
}
