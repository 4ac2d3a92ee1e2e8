package anchor

import (
	"fmt"
	"time"
)

// ActionKind names a mutation queued by the client for the server.
type ActionKind string

const (
	ActionCreate    ActionKind = "create"
	ActionCharge    ActionKind = "charge"
	ActionActivate  ActionKind = "activate"
	ActionReinforce ActionKind = "reinforce"
	ActionEnhance   ActionKind = "enhance"
	ActionBurn      ActionKind = "burn"
)

// Action is one pending mutation. Only the payload field matching Kind is set.
type Action struct {
	ID            string      `json:"id"`
	Kind          ActionKind  `json:"kind"`
	AnchorID      string      `json:"anchorId"`
	Anchor        *Anchor     `json:"anchor,omitempty"`
	Charge        *Charge     `json:"charge,omitempty"`
	Activation    *Activation `json:"activation,omitempty"`
	ReinforcedSVG *string     `json:"reinforcedSigilSvg,omitempty"`
	ImageURL      *string     `json:"enhancedImageUrl,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Validate checks that the payload required by Kind is present and well formed.
func (a *Action) Validate() error {
	if a.AnchorID == "" {
		return invalid("action without anchor id")
	}
	switch a.Kind {
	case ActionCreate:
		if a.Anchor == nil {
			return invalid("create action without anchor")
		}
		if err := ValidateIntention(a.Anchor.IntentionText); err != nil {
			return err
		}
		return ValidateCategory(a.Anchor.Category)
	case ActionCharge:
		if a.Charge == nil || !a.Charge.ChargeType.Valid() {
			return invalid("charge action without a valid charge type")
		}
	case ActionActivate:
		if a.Activation == nil || !a.Activation.ActivationType.Valid() {
			return invalid("activate action without a valid activation type")
		}
	case ActionReinforce:
		if a.ReinforcedSVG == nil {
			return invalid("reinforce action without sigil")
		}
	case ActionEnhance:
		if a.ImageURL == nil {
			return invalid("enhance action without image url")
		}
	case ActionBurn:
	default:
		return invalid(fmt.Sprintf("unknown action %q", a.Kind))
	}
	return nil
}

// ApplyTo mutates target according to the action, stamping at as the
// mutation time. Create actions are not applied to an existing anchor.
func (a *Action) ApplyTo(target *Anchor, at time.Time) {
	switch a.Kind {
	case ActionCharge:
		target.Charge(at)
	case ActionActivate:
		target.Activate(at)
	case ActionReinforce:
		svg := *a.ReinforcedSVG
		target.ReinforcedSigilSVG = &svg
		target.UpdatedAt = at.UTC()
	case ActionEnhance:
		url := *a.ImageURL
		target.EnhancedImageURL = &url
		target.UpdatedAt = at.UTC()
	case ActionBurn:
		target.Burn(at)
	}
}
