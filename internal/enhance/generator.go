package enhance

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/anchor/internal/common"
)

const (
	BaseSeed          = 2000
	SeedStep          = 456
	RetryBaseSeed     = 5000
	RetrySeedStep     = 789
	DefaultVariations = 4
	MaxVariations     = 8
	MinPassing        = 2
	parallelism       = 4
)

// GenerationInput is one backend request.
type GenerationInput struct {
	// ControlImage is a PNG data URL.
	ControlImage string
	Style        StylePreset
	Params       ControlNetParams
	Seed         int
}

// Backend runs ControlNet inference.
type Backend interface {
	Generate(ctx context.Context, in GenerationInput) (image.Image, error)
}

// Variation is one generated image with its structure score.
type Variation struct {
	Image      image.Image
	Match      MatchResult
	Seed       int
	Duration   time.Duration
	Composited bool
}

// VariationsResult is the outcome of one enhancement request.
type VariationsResult struct {
	Variations     []Variation
	Control        *ControlImage
	Style          string
	Prompt         string
	NegativePrompt string
	Duration       time.Duration
	PassingCount   int
	BestIndex      int
}

func (r *VariationsResult) rescore() {
	r.PassingCount, r.BestIndex = 0, 0
	for i, v := range r.Variations {
		if v.Match.StructurePreserved {
			r.PassingCount++
		}
		if v.Match.Combined > r.Variations[r.BestIndex].Match.Combined {
			r.BestIndex = i
		}
	}
}

// Generator runs the enhancement pipeline against a Backend.
type Generator struct {
	backend    Backend
	preprocess PreprocessConfig
	structure  StructureConfig
	params     ControlNetParams
	now        func() time.Time
}

type GeneratorOption func(*Generator)

func WithPreprocessConfig(c PreprocessConfig) GeneratorOption {
	return func(g *Generator) { g.preprocess = c }
}

func WithStructureConfig(c StructureConfig) GeneratorOption {
	return func(g *Generator) { g.structure = c }
}

func WithControlNetParams(p ControlNetParams) GeneratorOption {
	return func(g *Generator) { g.params = p }
}

func NewGenerator(backend Backend, opts ...GeneratorOption) *Generator {
	g := &Generator{
		backend:    backend,
		preprocess: DefaultPreprocessConfig(),
		structure:  DefaultStructureConfig(),
		params:     DefaultControlNetParams(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) PreprocessConfig() PreprocessConfig { return g.preprocess }
func (g *Generator) StructureConfig() StructureConfig   { return g.structure }

func (g *Generator) single(ctx context.Context, ctl *ControlImage, dataURL string, style StylePreset, params ControlNetParams, seed int) (Variation, error) {
	start := g.now()
	img, err := g.backend.Generate(ctx, GenerationInput{
		ControlImage: dataURL,
		Style:        style,
		Params:       params,
		Seed:         seed,
	})
	if err != nil {
		return Variation{}, fmt.Errorf("generate seed %d: %w", seed, err)
	}
	return Variation{
		Image:    img,
		Match:    MatchStructure(ctl.StrokeMask, img, g.structure),
		Seed:     seed,
		Duration: g.now().Sub(start),
	}, nil
}

// fanOut generates one variation per seed, at most parallelism at a time.
func (g *Generator) fanOut(ctx context.Context, ctl *ControlImage, style StylePreset, params ControlNetParams, seeds []int) ([]Variation, error) {
	dataURL, err := EncodeDataURL(ctl.Control)
	if err != nil {
		return nil, err
	}
	out := make([]Variation, len(seeds))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)
	for i, seed := range seeds {
		eg.Go(func() error {
			v, err := g.single(ctx, ctl, dataURL, style, params, seed)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Generate preprocesses input and produces n styled variations.
func (g *Generator) Generate(ctx context.Context, input string, styleName string, n int) (*VariationsResult, error) {
	start := g.now()
	if n < 1 || n > MaxVariations {
		return nil, fmt.Errorf("%w: variations must be between 1 and %d", common.ErrorValidation, MaxVariations)
	}
	style, err := Style(styleName)
	if err != nil {
		return nil, err
	}
	ctl, err := Preprocess(input, g.preprocess)
	if err != nil {
		return nil, err
	}

	seeds := make([]int, n)
	for i := range seeds {
		seeds[i] = BaseSeed + i*SeedStep
	}
	vs, err := g.fanOut(ctx, ctl, style, style.Apply(g.params), seeds)
	if err != nil {
		return nil, err
	}

	res := &VariationsResult{
		Variations:     vs,
		Control:        ctl,
		Style:          style.Name,
		Prompt:         style.Prompt,
		NegativePrompt: style.NegativePrompt,
	}
	res.rescore()
	res.Duration = g.now().Sub(start)
	return res, nil
}

// GenerateWithRetry is Generate followed by one stricter regeneration of the
// failing variations when fewer than minPassing preserved the structure.
// A retried variation replaces the original only when it scores higher.
func (g *Generator) GenerateWithRetry(ctx context.Context, input string, styleName string, n, minPassing int) (*VariationsResult, error) {
	start := g.now()
	res, err := g.Generate(ctx, input, styleName, n)
	if err != nil {
		return nil, err
	}
	if res.PassingCount >= minPassing {
		return res, nil
	}

	var failing []int
	for i, v := range res.Variations {
		if !v.Match.StructurePreserved {
			failing = append(failing, i)
		}
	}
	seeds := make([]int, len(failing))
	for i := range seeds {
		seeds[i] = RetryBaseSeed + i*RetrySeedStep
	}

	style, _ := Style(styleName)
	retried, err := g.fanOut(ctx, res.Control, style, style.Apply(g.params).Stricter(), seeds)
	if err != nil {
		return nil, err
	}
	for i, idx := range failing {
		if retried[i].Match.Combined > res.Variations[idx].Match.Combined {
			res.Variations[idx] = retried[i]
		}
	}
	res.rescore()
	res.Duration = g.now().Sub(start)
	return res, nil
}

// CompositeDrifted replaces every variation that failed the structure check
// with the original strokes composited over it.
func (g *Generator) CompositeDrifted(res *VariationsResult) {
	for i, v := range res.Variations {
		if v.Match.StructurePreserved {
			continue
		}
		c := compositeControl(res.Control, v.Image)
		m := MatchStructure(res.Control.StrokeMask, c.Image, g.structure)
		m.StructurePreserved = true
		m.Classification = ClassComposited
		res.Variations[i].Image = c.Image
		res.Variations[i].Match = m
		res.Variations[i].Composited = true
	}
}
