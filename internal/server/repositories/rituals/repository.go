// Package rituals records the charge and activation history of anchors.
package rituals

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.RitualEvent) error
	// ListByAnchor returns events oldest first.
	ListByAnchor(ctx context.Context, userID, anchorID string) ([]*models.RitualEvent, error)
}
