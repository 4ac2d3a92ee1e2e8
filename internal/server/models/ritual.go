package models

import (
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

// RitualEvent is one charge or activation recorded against an anchor.
// RitualType holds the charge or activation type, depending on Kind.
type RitualEvent struct {
	ID              string             `json:"id"`
	AnchorID        string             `json:"anchorId"`
	UserID          string             `json:"-"`
	Kind            anchor.SessionType `json:"kind"`
	RitualType      string             `json:"type"`
	DurationSeconds int                `json:"durationSeconds"`
	CreatedAt       time.Time          `json:"createdAt"`
}
