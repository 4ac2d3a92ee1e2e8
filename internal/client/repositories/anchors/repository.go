package anchors

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

// Repository is the local copy of the user's anchors.
type Repository interface {
	// Upsert inserts a or replaces the stored row with the same id.
	Upsert(ctx context.Context, a *anchor.Anchor) error
	// GetByID returns burned anchors too; it fails with common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*anchor.Anchor, error)
	// List returns anchors that are not burned, newest first.
	List(ctx context.Context) ([]*anchor.Anchor, error)
	// MaxVersion is the highest server version seen, 0 for an empty store.
	MaxVersion(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
