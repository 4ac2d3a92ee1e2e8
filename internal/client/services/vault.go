package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/google/uuid"
)

// VaultService reads and retires the locally stored anchors.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	newID       func() string
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager) *VaultService {
	return &VaultService{db: db, repomanager: m, now: time.Now, newID: uuid.NewString}
}

// List returns anchors that have not been burned, newest first.
func (s *VaultService) List(ctx context.Context) ([]*anchor.Anchor, error) {
	return s.repomanager.Anchors(s.db).List(ctx)
}

// Get treats burned anchors as missing.
func (s *VaultService) Get(ctx context.Context, id string) (*anchor.Anchor, error) {
	a, err := s.repomanager.Anchors(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Deleted {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (s *VaultService) History(ctx context.Context, id string) ([]*anchor.SessionLogEntry, error) {
	return s.repomanager.Sessions(s.db).ListByAnchor(ctx, id)
}

// Burn tombstones the anchor and queues the burn for the server.
func (s *VaultService) Burn(ctx context.Context, id string) error {
	return s.mutate(ctx, id, &anchor.Action{Kind: anchor.ActionBurn})
}

// SetEnhancedImage stores the chosen styled rendition of the anchor.
func (s *VaultService) SetEnhancedImage(ctx context.Context, id, url string) error {
	return s.mutate(ctx, id, &anchor.Action{Kind: anchor.ActionEnhance, ImageURL: &url})
}

// Reinforce replaces the traced sigil.
func (s *VaultService) Reinforce(ctx context.Context, id, svg string) error {
	return s.mutate(ctx, id, &anchor.Action{Kind: anchor.ActionReinforce, ReinforcedSVG: &svg})
}

func (s *VaultService) mutate(ctx context.Context, id string, act *anchor.Action) error {
	now := s.now().UTC()
	act.ID = s.newID()
	act.AnchorID = id
	act.CreatedAt = now
	if err := act.Validate(); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		anchors := s.repomanager.Anchors(tx)
		a, err := anchors.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Deleted {
			return common.ErrorNotFound
		}
		act.ApplyTo(a, now)
		if err := anchors.Upsert(ctx, a); err != nil {
			return err
		}
		return s.repomanager.Actions(tx).Enqueue(ctx, act)
	})
}
