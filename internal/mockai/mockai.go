// Package mockai stands in for the intention analysis and style variation
// service. Every call waits for a random 2 to 5 seconds and returns canned
// data.
package mockai

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
)

const (
	MinDelay = 2 * time.Second
	MaxDelay = 5 * time.Second

	// VariationCount is the number of variations GenerateVariations returns.
	VariationCount = 4
)

// Analysis is the result of AnalyzeIntention.
type Analysis struct {
	Intention         string          `json:"intention"`
	Category          anchor.Category `json:"category"`
	Keywords          []string        `json:"keywords"`
	Themes            []string        `json:"themes"`
	SuggestedSymbols  []string        `json:"suggestedSymbols"`
	RecommendedStyles []string        `json:"recommendedStyles"`
}

// Variation is one styled rendition of a sigil.
type Variation struct {
	Style string `json:"style"`
	SVG   string `json:"svg"`
}

// Service is the mock. The zero value is not usable; call New.
type Service struct {
	delay func() time.Duration
}

type Option func(*Service)

// WithDelay fixes the simulated latency, tests pass zero.
func WithDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = func() time.Duration { return d } }
}

func New(opts ...Option) *Service {
	s := &Service{delay: randomDelay}
	for _, o := range opts {
		o(s)
	}
	return s
}

func randomDelay() time.Duration {
	return MinDelay + time.Duration(rand.Int64N(int64(MaxDelay-MinDelay)))
}

func (s *Service) sleep(ctx context.Context) error {
	d := s.delay()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type categoryProfile struct {
	keywords []string
	themes   []string
	symbols  []string
	styles   []string
}

var profiles = map[anchor.Category]categoryProfile{
	anchor.CategoryCareer: {
		keywords: []string{"job", "work", "career", "promotion", "business", "success", "boss", "team"},
		themes:   []string{"ambition", "achievement", "recognition"},
		symbols:  []string{"mountain", "arrow", "key"},
		styles:   []string{"gold_leaf", "sacred_geometry"},
	},
	anchor.CategoryHealth: {
		keywords: []string{"health", "body", "run", "fit", "heal", "sleep", "strong", "energy"},
		themes:   []string{"vitality", "balance", "strength"},
		symbols:  []string{"tree", "sun", "spiral"},
		styles:   []string{"watercolor", "minimal_line"},
	},
	anchor.CategoryWealth: {
		keywords: []string{"money", "wealth", "rich", "income", "abundance", "save", "invest"},
		themes:   []string{"abundance", "security", "flow"},
		symbols:  []string{"river", "coin", "star"},
		styles:   []string{"gold_leaf", "cosmic"},
	},
	anchor.CategoryRelationships: {
		keywords: []string{"love", "partner", "friend", "family", "relationship", "connect"},
		themes:   []string{"connection", "trust", "warmth"},
		symbols:  []string{"bridge", "knot", "moon"},
		styles:   []string{"watercolor", "ink_brush"},
	},
	anchor.CategoryPersonalGrowth: {
		keywords: []string{"learn", "grow", "calm", "confident", "peace", "mind", "create"},
		themes:   []string{"clarity", "courage", "transformation"},
		symbols:  []string{"lotus", "flame", "eye"},
		styles:   []string{"ink_brush", "cosmic"},
	},
}

var fallbackProfile = categoryProfile{
	themes:  []string{"focus", "intention"},
	symbols: []string{"circle", "star"},
	styles:  []string{"minimal_line"},
}

// AnalyzeIntention matches text against per-category keyword lists and
// returns the best scoring category profile.
func (s *Service) AnalyzeIntention(ctx context.Context, text string) (*Analysis, error) {
	if err := anchor.ValidateIntention(text); err != nil {
		return nil, err
	}
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	lower := strings.ToLower(text)
	best, bestScore := anchor.Category(""), 0
	var matched []string

	for _, c := range anchor.Categories() {
		var hits []string
		for _, kw := range profiles[c].keywords {
			if strings.Contains(lower, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > bestScore {
			best, bestScore, matched = c, len(hits), hits
		}
	}

	p := fallbackProfile
	if best != "" {
		p = profiles[best]
	}
	sort.Strings(matched)

	return &Analysis{
		Intention:         strings.TrimSpace(text),
		Category:          best,
		Keywords:          matched,
		Themes:            append([]string(nil), p.themes...),
		SuggestedSymbols:  append([]string(nil), p.symbols...),
		RecommendedStyles: append([]string(nil), p.styles...),
	}, nil
}

var variationStyles = []struct {
	name  string
	color string
}{
	{"watercolor", "#5B8DB8"},
	{"ink_brush", "#1A1A1A"},
	{"gold_leaf", "#C9A227"},
	{"cosmic", "#7B4FD6"},
}

// GenerateVariations returns VariationCount recolored copies of sigilSVG. A
// non-empty style moves that style to the front.
func (s *Service) GenerateVariations(ctx context.Context, sigilSVG string, style string) ([]Variation, error) {
	if strings.TrimSpace(sigilSVG) == "" {
		return nil, fmt.Errorf("%w: sigil is required", common.ErrorValidation)
	}
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	out := make([]Variation, 0, VariationCount)
	for _, v := range variationStyles {
		out = append(out, Variation{
			Style: v.name,
			SVG:   strings.ReplaceAll(sigilSVG, "#000000", v.color),
		})
	}
	for i, v := range out {
		if v.Style == style && i > 0 {
			out[0], out[i] = out[i], out[0]
			break
		}
	}
	return out, nil
}
