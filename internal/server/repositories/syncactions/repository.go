// Package syncactions remembers which client actions a user has already
// applied, so an action resent after a lost response is applied once.
package syncactions

import "context"

type Repository interface {
	// Record stores actionID for userID and reports whether it was new.
	Record(ctx context.Context, userID, actionID string) (bool, error)
}
