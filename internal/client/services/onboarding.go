package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/sequencer"
)

// OnboardingService keeps the onboarding flags in the metadata store.
type OnboardingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewOnboardingService(db *sql.DB, m repomanager.RepositoryManager) *OnboardingService {
	return &OnboardingService{db: db, repomanager: m}
}

// Flags reports the persisted session flags. Authenticated means a user has
// logged in on this device and not logged out since.
func (s *OnboardingService) Flags(ctx context.Context) (anchor.SessionFlags, error) {
	m, err := s.repomanager.Metadata(s.db).List(ctx)
	if err != nil {
		return anchor.SessionFlags{}, err
	}
	_, authenticated := m[keyUsername]
	_, complete := m[keyOnboardingComplete]
	return anchor.SessionFlags{
		Authenticated:      authenticated,
		OnboardingComplete: complete,
		Segment:            anchor.Segment(m[keySegment]),
	}, nil
}

func (s *OnboardingService) SetSegment(ctx context.Context, seg anchor.Segment) error {
	if !seg.Valid() {
		return fmt.Errorf("%w: unknown segment %q", common.ErrorValidation, seg)
	}
	return s.repomanager.Metadata(s.db).Set(ctx, keySegment, []byte(seg))
}

func (s *OnboardingService) Complete(ctx context.Context) error {
	return s.repomanager.Metadata(s.db).Set(ctx, keyOnboardingComplete, []byte("1"))
}

// Reset makes the narrative show again on the next start.
func (s *OnboardingService) Reset(ctx context.Context) error {
	return s.repomanager.Metadata(s.db).Delete(ctx, keyOnboardingComplete)
}

// Narrative builds the onboarding sequence; its final CTA marks onboarding
// complete.
func (s *OnboardingService) Narrative(ctx context.Context) (*sequencer.Sequencer, error) {
	return sequencer.New(sequencer.NarrativeOnboarding(),
		func() error { return s.Complete(ctx) },
		sequencer.WithBackLock(sequencer.NarrativeBackLock))
}
