package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/enhance"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/server/storage"
)

// Request limits.
const (
	MinStructureScore     = 0.5
	MaxStructureScore     = 1.0
	DefaultStructureScore = 0.85
)

type EnhanceRequest struct {
	SigilSVG          string  `json:"sigilSvg"`
	StyleChoice       string  `json:"styleChoice"`
	AnchorID          string  `json:"anchorId"`
	NumVariations     int     `json:"numVariations"`
	AutoComposite     bool    `json:"autoComposite"`
	MinStructureScore float64 `json:"minStructureScore"`
}

// VariationView is one variation as returned to clients. With object storage
// configured the image is uploaded and ImageURL is set; otherwise the PNG is
// inlined as ImageBase64.
type VariationView struct {
	ImageBase64         string  `json:"imageBase64,omitempty"`
	ImageURL            string  `json:"imageUrl,omitempty"`
	StructureMatchScore float64 `json:"structureMatchScore"`
	EdgeOverlapScore    float64 `json:"edgeOverlapScore"`
	CombinedScore       float64 `json:"combinedScore"`
	StructurePreserved  bool    `json:"structurePreserved"`
	Classification      string  `json:"classification"`
	WasComposited       bool    `json:"wasComposited"`
	Seed                int     `json:"seed"`
}

type EnhanceResponse struct {
	Success            bool            `json:"success"`
	Variations         []VariationView `json:"variations"`
	ControlImageBase64 string          `json:"controlImageBase64"`
	StyleApplied       string          `json:"styleApplied"`
	PromptUsed         string          `json:"promptUsed"`
	NegativePromptUsed string          `json:"negativePromptUsed"`
	GenerationTimeMs   int64           `json:"generationTimeMs"`
	PassingCount       int             `json:"passingCount"`
	BestVariationIndex int             `json:"bestVariationIndex"`
	StructureThreshold float64         `json:"structureThreshold"`
}

type PreprocessResponse struct {
	ControlImageBase64 string   `json:"controlImageBase64"`
	StrokeMaskBase64   string   `json:"strokeMaskBase64"`
	DilatedMaskBase64  string   `json:"dilatedMaskBase64"`
	ProcessingInfo     []string `json:"processingInfo"`
}

type CompositeResponse struct {
	CompositeImageBase64 string `json:"compositeImageBase64"`
	BackgroundOnlyBase64 string `json:"backgroundOnlyBase64"`
	StructureGuaranteed  bool   `json:"structureGuaranteed"`
}

// EnhanceService exposes the enhancement pipeline to the transports.
type EnhanceService struct {
	backend    enhance.Backend
	store      storage.ImageStore
	preprocess enhance.PreprocessConfig
	structure  enhance.StructureConfig
	timeout    time.Duration
	configured bool
	logger     logging.Logger
	now        func() time.Time
}

// NewEnhanceService builds the service. store may be nil. configured reports
// whether backend is a real inference backend rather than the local fallback.
func NewEnhanceService(backend enhance.Backend, store storage.ImageStore, timeout time.Duration, configured bool, l logging.Logger) *EnhanceService {
	return &EnhanceService{
		backend:    backend,
		store:      store,
		preprocess: enhance.DefaultPreprocessConfig(),
		structure:  enhance.DefaultStructureConfig(),
		timeout:    timeout,
		configured: configured,
		logger:     l.With("module", "enhance_service"),
		now:        time.Now,
	}
}

// SetStrokeExtraction picks the method used to pull strokes out of
// generated images. Unknown names fall back to adaptive.
func (s *EnhanceService) SetStrokeExtraction(method string) {
	s.structure.ExtractMethod = method
}

func (s *EnhanceService) BackendConfigured() bool { return s.configured }

func (s *EnhanceService) Styles() []enhance.StyleInfo { return enhance.Styles() }

func normalize(req *EnhanceRequest) error {
	if req.NumVariations == 0 {
		req.NumVariations = enhance.DefaultVariations
	}
	if req.NumVariations < 1 || req.NumVariations > enhance.MaxVariations {
		return fmt.Errorf("%w: numVariations must be between 1 and %d", common.ErrorValidation, enhance.MaxVariations)
	}
	if req.MinStructureScore == 0 {
		req.MinStructureScore = DefaultStructureScore
	}
	if req.MinStructureScore < MinStructureScore || req.MinStructureScore > MaxStructureScore {
		return fmt.Errorf("%w: minStructureScore must be between %.1f and %.1f",
			common.ErrorValidation, MinStructureScore, MaxStructureScore)
	}
	if req.SigilSVG == "" {
		return fmt.Errorf("%w: sigilSvg is required", common.ErrorValidation)
	}
	_, err := enhance.Style(req.StyleChoice)
	return err
}

// Enhance generates styled variations of the sigil, retrying once with
// stricter parameters when too few keep the structure, and optionally
// composites the original strokes over drifted ones.
func (s *EnhanceService) Enhance(ctx context.Context, userID string, req EnhanceRequest) (*EnhanceResponse, error) {
	if err := normalize(&req); err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	structure := s.structure
	structure.Threshold = req.MinStructureScore
	gen := enhance.NewGenerator(s.backend,
		enhance.WithPreprocessConfig(s.preprocess),
		enhance.WithStructureConfig(structure),
	)

	res, err := gen.GenerateWithRetry(ctx, req.SigilSVG, req.StyleChoice, req.NumVariations, enhance.MinPassing)
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	if req.AutoComposite {
		gen.CompositeDrifted(res)
	}

	out := &EnhanceResponse{
		Success:            true,
		Variations:         make([]VariationView, 0, len(res.Variations)),
		StyleApplied:       res.Style,
		PromptUsed:         res.Prompt,
		NegativePromptUsed: res.NegativePrompt,
		GenerationTimeMs:   res.Duration.Milliseconds(),
		PassingCount:       res.PassingCount,
		BestVariationIndex: res.BestIndex,
		StructureThreshold: req.MinStructureScore,
	}
	if out.ControlImageBase64, err = enhance.EncodeBase64(res.Control.Control); err != nil {
		return nil, err
	}

	for _, v := range res.Variations {
		view := VariationView{
			StructureMatchScore: v.Match.IoU,
			EdgeOverlapScore:    v.Match.EdgeOverlap,
			CombinedScore:       v.Match.Combined,
			StructurePreserved:  v.Match.StructurePreserved,
			Classification:      v.Match.Classification,
			WasComposited:       v.Composited,
			Seed:                v.Seed,
		}
		if err := s.attachImage(ctx, userID, &view, v); err != nil {
			return nil, err
		}
		out.Variations = append(out.Variations, view)
	}

	s.logger.Info(ctx, "enhanced sigil",
		"user", userID, "anchor", req.AnchorID, "style", res.Style,
		"variations", len(res.Variations), "passing", res.PassingCount, "ms", out.GenerationTimeMs)
	return out, nil
}

func (s *EnhanceService) attachImage(ctx context.Context, userID string, view *VariationView, v enhance.Variation) error {
	if s.store == nil {
		b64, err := enhance.EncodeBase64(v.Image)
		view.ImageBase64 = b64
		return err
	}
	png, err := enhance.EncodePNG(v.Image)
	if err != nil {
		return err
	}
	key := storage.ImageKey(userID, s.now())
	if err := s.store.Put(ctx, key, png, "image/png"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	view.ImageURL = url
	return nil
}

// Preprocess returns the control image and masks for a sigil.
func (s *EnhanceService) Preprocess(sigilSVG string) (*PreprocessResponse, error) {
	ctl, err := enhance.Preprocess(sigilSVG, s.preprocess)
	if err != nil {
		return nil, err
	}
	out := &PreprocessResponse{ProcessingInfo: ctl.Steps}
	if out.ControlImageBase64, err = enhance.EncodeBase64(ctl.Control); err != nil {
		return nil, err
	}
	if out.StrokeMaskBase64, err = enhance.EncodeBase64(ctl.StrokeMask); err != nil {
		return nil, err
	}
	if out.DilatedMaskBase64, err = enhance.EncodeBase64(ctl.DilatedMask); err != nil {
		return nil, err
	}
	return out, nil
}

// StructureMatch scores a generated image against an original stroke mask.
// Both are base64 or data-URL images.
func (s *EnhanceService) StructureMatch(originalMask, generated string) (*enhance.MatchResult, error) {
	orig, err := enhance.DecodeImage(originalMask)
	if err != nil {
		return nil, err
	}
	gen, err := enhance.DecodeImage(generated)
	if err != nil {
		return nil, err
	}
	m := enhance.MatchStructure(orig, gen, s.structure)
	return &m, nil
}

// Composite draws the original sigil strokes over a generated image.
func (s *EnhanceService) Composite(originalSigil, generated string) (*CompositeResponse, error) {
	gen, err := enhance.DecodeImage(generated)
	if err != nil {
		return nil, err
	}
	res, err := enhance.CompositeOriginal(originalSigil, gen, s.preprocess)
	if err != nil {
		return nil, err
	}
	out := &CompositeResponse{StructureGuaranteed: res.StructureGuaranteed}
	if out.CompositeImageBase64, err = enhance.EncodeBase64(res.Image); err != nil {
		return nil, err
	}
	if out.BackgroundOnlyBase64, err = enhance.EncodeBase64(res.Background); err != nil {
		return nil, err
	}
	return out, nil
}
