package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/server/events"
	"github.com/dmitrijs2005/anchor/internal/server/models"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/sigil"
	"github.com/google/uuid"
)

// NewAnchor is the input of AnchorService.Create. ID may be set by an
// offline client; BaseSigilSVG is generated from the intention when empty.
type NewAnchor struct {
	ID            string          `json:"id"`
	IntentionText string          `json:"intentionText"`
	Category      anchor.Category `json:"category"`
	BaseSigilSVG  string          `json:"baseSigilSvg"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// SyncResult is the outcome of AnchorService.Sync.
type SyncResult struct {
	Applied    []string
	Rejected   []string
	Anchors    []*anchor.Anchor
	MaxVersion int64
}

// AnchorService owns anchor mutations. Every mutation bumps the owner's sync
// version in the same transaction as the write, so clients can pull changes
// with a single version watermark.
type AnchorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
	logger      logging.Logger
	now         func() time.Time
}

func NewAnchorService(db *sql.DB, m repomanager.RepositoryManager, p events.Publisher, l logging.Logger) *AnchorService {
	return &AnchorService{
		db:          db,
		repomanager: m,
		publisher:   p,
		logger:      l.With("module", "anchor_service"),
		now:         time.Now,
	}
}

func (s *AnchorService) Create(ctx context.Context, userID string, in NewAnchor) (*anchor.Anchor, error) {
	if err := anchor.ValidateIntention(in.IntentionText); err != nil {
		return nil, err
	}
	if err := anchor.ValidateCategory(in.Category); err != nil {
		return nil, err
	}
	svg := in.BaseSigilSVG
	if svg == "" {
		var err error
		if svg, err = sigil.Generate(in.IntentionText); err != nil {
			return nil, err
		}
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: anchor id must be a uuid", common.ErrorValidation)
	}
	now := s.now().UTC()
	created := in.CreatedAt.UTC()
	if in.CreatedAt.IsZero() {
		created = now
	}
	a := &anchor.Anchor{
		ID:            id,
		UserID:        userID,
		IntentionText: in.IntentionText,
		Category:      in.Category,
		BaseSigilSVG:  svg,
		CreatedAt:     created,
		UpdatedAt:     now,
	}

	replayed := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Anchors(tx)
		// A client retrying a create it already pushed gets the stored anchor back.
		if in.ID != "" {
			existing, err := repo.GetByID(ctx, userID, in.ID)
			if err == nil {
				a, replayed = existing, true
				return nil
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
		}
		v, err := s.repomanager.Users(tx).IncrementCurrentVersion(ctx, userID)
		if err != nil {
			return err
		}
		a.Version = v
		return repo.CreateOrUpdate(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating anchor: %w", err)
	}
	if !replayed {
		s.publish(ctx, events.AnchorCreated, a, nil)
	}
	return a, nil
}

// List returns the user's vault, newest first.
func (s *AnchorService) List(ctx context.Context, userID string) ([]*anchor.Anchor, error) {
	return s.repomanager.Anchors(s.db).List(ctx, userID)
}

// Get returns common.ErrorNotFound for burned anchors too.
func (s *AnchorService) Get(ctx context.Context, userID, id string) (*anchor.Anchor, error) {
	a, err := s.repomanager.Anchors(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if a.Deleted {
		return nil, fmt.Errorf("%w: anchor %s", common.ErrorNotFound, id)
	}
	return a, nil
}

func (s *AnchorService) History(ctx context.Context, userID, id string) ([]*models.RitualEvent, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repomanager.Rituals(s.db).ListByAnchor(ctx, userID, id)
}

func (s *AnchorService) Charge(ctx context.Context, userID, id string, c anchor.Charge) (*anchor.Anchor, error) {
	return s.Apply(ctx, userID, &anchor.Action{Kind: anchor.ActionCharge, AnchorID: id, Charge: &c})
}

func (s *AnchorService) Activate(ctx context.Context, userID, id string, a anchor.Activation) (*anchor.Anchor, error) {
	return s.Apply(ctx, userID, &anchor.Action{Kind: anchor.ActionActivate, AnchorID: id, Activation: &a})
}

func (s *AnchorService) Reinforce(ctx context.Context, userID, id, svg string) (*anchor.Anchor, error) {
	return s.Apply(ctx, userID, &anchor.Action{Kind: anchor.ActionReinforce, AnchorID: id, ReinforcedSVG: &svg})
}

func (s *AnchorService) SetEnhancedImage(ctx context.Context, userID, id, url string) (*anchor.Anchor, error) {
	return s.Apply(ctx, userID, &anchor.Action{Kind: anchor.ActionEnhance, AnchorID: id, ImageURL: &url})
}

func (s *AnchorService) Burn(ctx context.Context, userID, id string) error {
	_, err := s.Apply(ctx, userID, &anchor.Action{Kind: anchor.ActionBurn, AnchorID: id})
	return err
}

var actionEvents = map[anchor.ActionKind]string{
	anchor.ActionCreate:    events.AnchorCreated,
	anchor.ActionCharge:    events.AnchorCharged,
	anchor.ActionActivate:  events.AnchorActivated,
	anchor.ActionReinforce: events.AnchorReinforced,
	anchor.ActionEnhance:   events.AnchorEnhanced,
	anchor.ActionBurn:      events.AnchorBurned,
}

// Apply runs one non-create action against an existing anchor in its own
// transaction: load, mutate, bump version, save, and record a ritual event
// for charges and activations. An action whose ID was applied before returns
// the stored anchor unchanged.
func (s *AnchorService) Apply(ctx context.Context, userID string, act *anchor.Action) (*anchor.Anchor, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}
	if act.Kind == anchor.ActionCreate {
		return s.Create(ctx, userID, NewAnchor{
			ID:            act.AnchorID,
			IntentionText: act.Anchor.IntentionText,
			Category:      act.Anchor.Category,
			BaseSigilSVG:  act.Anchor.BaseSigilSVG,
			CreatedAt:     act.Anchor.CreatedAt,
		})
	}

	var (
		out      *anchor.Anchor
		ritual   *models.RitualEvent
		replayed bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Anchors(tx)
		if act.ID != "" {
			fresh, err := s.repomanager.SyncActions(tx).Record(ctx, userID, act.ID)
			if err != nil {
				return err
			}
			if !fresh {
				a, err := repo.GetByID(ctx, userID, act.AnchorID)
				if err != nil {
					return err
				}
				out, replayed = a, true
				return nil
			}
		}

		a, err := repo.GetByID(ctx, userID, act.AnchorID)
		if err != nil {
			return err
		}
		if a.Deleted {
			return fmt.Errorf("%w: anchor %s", common.ErrorNotFound, act.AnchorID)
		}

		act.ApplyTo(a, s.now())

		v, err := s.repomanager.Users(tx).IncrementCurrentVersion(ctx, userID)
		if err != nil {
			return err
		}
		a.Version = v
		if err := repo.CreateOrUpdate(ctx, a); err != nil {
			return err
		}

		if ritual = ritualFor(userID, act); ritual != nil {
			if err := s.repomanager.Rituals(tx).Create(ctx, ritual); err != nil {
				return err
			}
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error applying %s: %w", act.Kind, err)
	}
	if replayed {
		s.logger.Debug(ctx, "action already applied", "action", act.ID, "kind", act.Kind)
		return out, nil
	}
	s.publish(ctx, actionEvents[act.Kind], out, ritual)
	return out, nil
}

func ritualFor(userID string, act *anchor.Action) *models.RitualEvent {
	switch act.Kind {
	case anchor.ActionCharge:
		return &models.RitualEvent{
			AnchorID: act.AnchorID, UserID: userID, Kind: anchor.SessionCharge,
			RitualType: string(act.Charge.ChargeType), DurationSeconds: act.Charge.DurationSeconds,
		}
	case anchor.ActionActivate:
		return &models.RitualEvent{
			AnchorID: act.AnchorID, UserID: userID, Kind: anchor.SessionActivation,
			RitualType: string(act.Activation.ActivationType), DurationSeconds: act.Activation.DurationSeconds,
		}
	}
	return nil
}

// Sync applies the client's pending actions in order and returns every anchor
// changed after maxVersion. Actions that can never succeed (invalid payload,
// unknown or foreign anchor) are rejected so the client can drop them; any
// other failure aborts the sync and leaves the rest queued. The server copy of
// every anchor touched by a rejected action is returned as well, so the
// client can undo its optimistic change.
func (s *AnchorService) Sync(ctx context.Context, userID string, actions []*anchor.Action, maxVersion int64) (*SyncResult, error) {
	res := &SyncResult{Applied: []string{}, Rejected: []string{}}
	var touched []string
	for _, act := range actions {
		_, err := s.Apply(ctx, userID, act)
		switch {
		case err == nil:
			res.Applied = append(res.Applied, act.ID)
		case errors.Is(err, common.ErrorValidation),
			errors.Is(err, common.ErrorNotFound),
			errors.Is(err, common.ErrVersionConflict):
			s.logger.Warn(ctx, "rejecting sync action", "action", act.ID, "kind", act.Kind, "error", err.Error())
			res.Rejected = append(res.Rejected, act.ID)
			touched = append(touched, act.AnchorID)
		default:
			return nil, err
		}
	}

	repo := s.repomanager.Anchors(s.db)
	updated, err := repo.SelectUpdated(ctx, userID, maxVersion)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(updated))
	for _, a := range updated {
		seen[a.ID] = true
	}
	for _, id := range touched {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, err := repo.GetByID(ctx, userID, id)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		updated = append(updated, a)
	}

	v, err := s.repomanager.Users(s.db).CurrentVersion(ctx, userID)
	if err != nil {
		return nil, err
	}
	res.Anchors = updated
	res.MaxVersion = v
	return res, nil
}

func (s *AnchorService) publish(ctx context.Context, key string, a *anchor.Anchor, r *models.RitualEvent) {
	payload := map[string]any{
		"anchorId": a.ID,
		"userId":   a.UserID,
		"version":  a.Version,
	}
	if r != nil {
		payload["type"] = r.RitualType
		payload["durationSeconds"] = r.DurationSeconds
	}
	if err := s.publisher.PublishJSON(ctx, key, payload); err != nil {
		s.logger.Warn(ctx, "event publish failed", "key", key, "error", err.Error())
	}
}
