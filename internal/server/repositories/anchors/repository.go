// Package anchors persists anchors on the server, keyed by id and scoped to
// their owner.
package anchors

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

type Repository interface {
	// CreateOrUpdate upserts a by id. An id owned by another user yields
	// common.ErrVersionConflict.
	CreateOrUpdate(ctx context.Context, a *anchor.Anchor) error
	// GetByID returns common.ErrorNotFound when the anchor is absent or not owned by userID.
	GetByID(ctx context.Context, userID, id string) (*anchor.Anchor, error)
	// List returns the user's anchors that are not burned, newest first.
	List(ctx context.Context, userID string) ([]*anchor.Anchor, error)
	// SelectUpdated returns every anchor, burned ones included, with version > minVersion.
	SelectUpdated(ctx context.Context, userID string, minVersion int64) ([]*anchor.Anchor, error)
}
