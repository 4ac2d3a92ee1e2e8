// Package orders stores print orders.
package orders

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

type Repository interface {
	// Create inserts o and fills in ID, Status and CreatedAt.
	Create(ctx context.Context, o *anchor.Order) error
	GetByID(ctx context.Context, userID, id string) (*anchor.Order, error)
}
