package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/mockai"
	"github.com/dmitrijs2005/anchor/internal/sequencer"
	"github.com/dmitrijs2005/anchor/internal/sigil"
	"github.com/google/uuid"
)

// Analyzer suggests symbols and styles for an intention.
type Analyzer interface {
	AnalyzeIntention(ctx context.Context, text string) (*mockai.Analysis, error)
	GenerateVariations(ctx context.Context, sigilSVG string, style string) ([]mockai.Variation, error)
}

// Draft is what the creation wizard has collected so far.
type Draft struct {
	IntentionText      string
	Category           anchor.Category
	BaseSigilSVG       string
	ReinforcedSigilSVG string
	Style              string
	EnhancedImageURL   string
}

// Wizard pairs the creation steps with the draft they fill in. Saved is set
// once the final step has committed the anchor.
type Wizard struct {
	*sequencer.Sequencer
	Draft *Draft
	Saved *anchor.Anchor
}

// CreationService turns a draft into a stored anchor.
type CreationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ai          Analyzer
	now         func() time.Time
	newID       func() string
}

func NewCreationService(db *sql.DB, m repomanager.RepositoryManager, ai Analyzer) *CreationService {
	return &CreationService{db: db, repomanager: m, ai: ai, now: time.Now, newID: uuid.NewString}
}

// NewWizard starts an empty draft. The final CTA commits it exactly once.
func (s *CreationService) NewWizard(ctx context.Context) (*Wizard, error) {
	w := &Wizard{Draft: &Draft{}}
	seq, err := sequencer.New(sequencer.CreationWizard(), func() error {
		a, err := s.Commit(ctx, w.Draft)
		if err != nil {
			return err
		}
		w.Saved = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.Sequencer = seq
	return w, nil
}

// SetIntention validates text and draws the base sigil for it.
func (s *CreationService) SetIntention(d *Draft, text string) error {
	text = strings.TrimSpace(text)
	if err := anchor.ValidateIntention(text); err != nil {
		return err
	}
	svg, err := sigil.Generate(text)
	if err != nil {
		return err
	}
	d.IntentionText = text
	d.BaseSigilSVG = svg
	d.ReinforcedSigilSVG = ""
	return nil
}

func (s *CreationService) SetCategory(d *Draft, c anchor.Category) error {
	if err := anchor.ValidateCategory(c); err != nil {
		return err
	}
	d.Category = c
	return nil
}

func (s *CreationService) Analyze(ctx context.Context, d *Draft) (*mockai.Analysis, error) {
	if d.IntentionText == "" {
		return nil, fmt.Errorf("%w: intention is required", common.ErrorValidation)
	}
	return s.ai.AnalyzeIntention(ctx, d.IntentionText)
}

// Variations renders styled versions of the draft's current sigil.
func (s *CreationService) Variations(ctx context.Context, d *Draft, style string) ([]mockai.Variation, error) {
	return s.ai.GenerateVariations(ctx, displaySigil(d), style)
}

// ChooseVariation keeps v as the enhanced image, inlined as a data URL.
func (s *CreationService) ChooseVariation(d *Draft, v mockai.Variation) {
	d.Style = v.Style
	d.EnhancedImageURL = SVGDataURL(v.SVG)
}

func displaySigil(d *Draft) string {
	if d.ReinforcedSigilSVG != "" {
		return d.ReinforcedSigilSVG
	}
	return d.BaseSigilSVG
}

// SVGDataURL inlines an SVG document as a data URL.
func SVGDataURL(svg string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// Commit stores the anchor and queues its creation, followed by the
// reinforcement and enhancement when the draft has them.
func (s *CreationService) Commit(ctx context.Context, d *Draft) (*anchor.Anchor, error) {
	if err := anchor.ValidateIntention(d.IntentionText); err != nil {
		return nil, err
	}
	if err := anchor.ValidateCategory(d.Category); err != nil {
		return nil, err
	}
	if d.BaseSigilSVG == "" {
		return nil, fmt.Errorf("%w: sigil is required", common.ErrorValidation)
	}

	now := s.now().UTC()
	a := &anchor.Anchor{
		ID:            s.newID(),
		IntentionText: d.IntentionText,
		Category:      d.Category,
		BaseSigilSVG:  d.BaseSigilSVG,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	queue := []*anchor.Action{{Kind: anchor.ActionCreate, Anchor: a}}
	if d.ReinforcedSigilSVG != "" {
		svg := d.ReinforcedSigilSVG
		queue = append(queue, &anchor.Action{Kind: anchor.ActionReinforce, ReinforcedSVG: &svg})
	}
	if d.EnhancedImageURL != "" {
		url := d.EnhancedImageURL
		queue = append(queue, &anchor.Action{Kind: anchor.ActionEnhance, ImageURL: &url})
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		actions := s.repomanager.Actions(tx)
		for _, act := range queue {
			act.ID = s.newID()
			act.AnchorID = a.ID
			act.CreatedAt = now
			if act.Kind != anchor.ActionCreate {
				act.ApplyTo(a, now)
			}
			if err := actions.Enqueue(ctx, act); err != nil {
				return err
			}
		}
		return s.repomanager.Anchors(tx).Upsert(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
