// Package anchor holds the domain records shared by the client and the server:
// anchors, rituals, session log entries, orders and the validation rules
// that apply to them.
package anchor

import (
	"time"
)

// Anchor is a user intention paired with its sigil.
type Anchor struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	IntentionText      string     `json:"intentionText"`
	Category           Category   `json:"category"`
	BaseSigilSVG       string     `json:"baseSigilSvg"`
	ReinforcedSigilSVG *string    `json:"reinforcedSigilSvg,omitempty"`
	EnhancedImageURL   *string    `json:"enhancedImageUrl,omitempty"`
	IsCharged          bool       `json:"isCharged"`
	ChargedAt          *time.Time `json:"chargedAt,omitempty"`
	ActivationCount    int        `json:"activationCount"`
	LastActivatedAt    *time.Time `json:"lastActivatedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	Version            int64      `json:"version"`
	Deleted            bool       `json:"deleted"`
}

// DisplaySigil returns the reinforced sigil when one was drawn, the base one otherwise.
func (a *Anchor) DisplaySigil() string {
	if a.ReinforcedSigilSVG != nil && *a.ReinforcedSigilSVG != "" {
		return *a.ReinforcedSigilSVG
	}
	return a.BaseSigilSVG
}

// Charge marks the anchor charged at t.
func (a *Anchor) Charge(t time.Time) {
	t = t.UTC()
	a.IsCharged = true
	a.ChargedAt = &t
	a.UpdatedAt = t
}

// Activate records one more activation at t.
func (a *Anchor) Activate(t time.Time) {
	t = t.UTC()
	a.ActivationCount++
	a.LastActivatedAt = &t
	a.UpdatedAt = t
}

// Burn tombstones the anchor.
func (a *Anchor) Burn(t time.Time) {
	a.Deleted = true
	a.UpdatedAt = t.UTC()
}

// ChargeType identifies how an anchor was charged.
type ChargeType string

const (
	ChargeInitialQuick ChargeType = "initial_quick"
	ChargeInitialDeep  ChargeType = "initial_deep"
	ChargeRecharge     ChargeType = "recharge"
)

// Valid reports whether c is a known charge type.
func (c ChargeType) Valid() bool {
	switch c {
	case ChargeInitialQuick, ChargeInitialDeep, ChargeRecharge:
		return true
	}
	return false
}

// ActivationType identifies the activation ritual.
type ActivationType string

const (
	ActivationVisual ActivationType = "visual"
	ActivationMantra ActivationType = "mantra"
)

func (a ActivationType) Valid() bool {
	return a == ActivationVisual || a == ActivationMantra
}

// Nominal ritual durations in seconds.
const (
	QuickChargeSeconds = 30
	DeepChargeSeconds  = 300
	ActivationSeconds  = 10
)

// Charge is the payload of a charge call.
type Charge struct {
	ChargeType      ChargeType `json:"chargeType"`
	DurationSeconds int        `json:"durationSeconds"`
}

// Activation is the payload of an activate call.
type Activation struct {
	ActivationType  ActivationType `json:"activationType"`
	DurationSeconds int            `json:"durationSeconds"`
}
