package anchor

import "time"

// SessionType is the kind of practice a session log entry records.
type SessionType string

const (
	SessionCharge     SessionType = "charge"
	SessionActivation SessionType = "activation"
)

// ContinueWindow is how long after a session the continue shortcut stays available.
const ContinueWindow = 24 * time.Hour

// SessionLogEntry records one finished ritual.
type SessionLogEntry struct {
	ID              int64       `json:"id,omitempty"`
	AnchorID        string      `json:"anchorId"`
	Type            SessionType `json:"type"`
	DurationSeconds int         `json:"durationSeconds"`
	Mode            string      `json:"mode"`
	CompletedAt     time.Time   `json:"completedAt"`
}

// ShouldOfferContinue reports whether the continue shortcut should be shown for
// entry at now. A nil or zero entry never offers it.
func ShouldOfferContinue(entry *SessionLogEntry, now time.Time) bool {
	if entry == nil || entry.CompletedAt.IsZero() {
		return false
	}
	return now.Sub(entry.CompletedAt) < ContinueWindow
}
