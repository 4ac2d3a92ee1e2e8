package sessions

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

// Repository is the append-only log of finished rituals.
type Repository interface {
	// Append stores e and sets e.ID.
	Append(ctx context.Context, e *anchor.SessionLogEntry) error
	// Last returns the most recently completed entry, or (nil, nil).
	Last(ctx context.Context) (*anchor.SessionLogEntry, error)
	ListByAnchor(ctx context.Context, anchorID string) ([]*anchor.SessionLogEntry, error)
	Clear(ctx context.Context) error
}
