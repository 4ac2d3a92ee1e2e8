package enhance

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/anchor/internal/common"
)

// ControlNetParams are the generation parameters sent to the backend.
type ControlNetParams struct {
	ConditioningScale float64 `json:"conditioningScale"`
	GuidanceStart     float64 `json:"guidanceStart"`
	GuidanceEnd       float64 `json:"guidanceEnd"`
	GuidanceScale     float64 `json:"guidanceScale"`
	InferenceSteps    int     `json:"inferenceSteps"`
	DenoiseStrength   float64 `json:"denoiseStrength"`
}

// DefaultControlNetParams favour structure adherence over prompt freedom.
func DefaultControlNetParams() ControlNetParams {
	return ControlNetParams{
		ConditioningScale: 1.15,
		GuidanceStart:     0.0,
		GuidanceEnd:       0.95,
		GuidanceScale:     5.0,
		InferenceSteps:    35,
		DenoiseStrength:   0.28,
	}
}

// Stricter returns the parameters used to regenerate variations that failed
// the structure check.
func (p ControlNetParams) Stricter() ControlNetParams {
	return ControlNetParams{
		ConditioningScale: min(p.ConditioningScale+0.15, 1.5),
		GuidanceScale:     max(p.GuidanceScale-1.0, 3.0),
		DenoiseStrength:   max(p.DenoiseStrength-0.05, 0.15),
		GuidanceStart:     p.GuidanceStart,
		GuidanceEnd:       min(p.GuidanceEnd+0.05, 1.0),
		InferenceSteps:    p.InferenceSteps + 5,
	}
}

// PreprocessConfig controls control image preparation.
type PreprocessConfig struct {
	OutputSize       int
	StrokeMultiplier float64
	MinStrokeWidth   int
	MaxStrokeWidth   int
	PaddingPercent   float64
	EdgeEnhanceSigma float64
	MaskDilationPx   int
}

func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		OutputSize:       1024,
		StrokeMultiplier: 2.0,
		MinStrokeWidth:   4,
		MaxStrokeWidth:   12,
		PaddingPercent:   0.12,
		EdgeEnhanceSigma: 1.2,
		MaskDilationPx:   6,
	}
}

// StructureConfig controls structure matching.
type StructureConfig struct {
	Threshold          float64
	BinarizeThreshold  uint8
	IoUWeight          float64
	EdgeWeight         float64
	EdgeTolerancePx    int
	MoreArtisticCutoff float64
	ExtractMethod      string
}

func DefaultStructureConfig() StructureConfig {
	return StructureConfig{
		Threshold:          0.85,
		BinarizeThreshold:  128,
		IoUWeight:          0.7,
		EdgeWeight:         0.3,
		EdgeTolerancePx:    3,
		MoreArtisticCutoff: 0.70,
		ExtractMethod:      ExtractAdaptive,
	}
}

// ControlNet model families.
const (
	ControlLineart = "lineart"
	ControlCanny   = "canny"
)

// StylePreset describes one artistic style. Zero overrides fall back to
// the pipeline defaults.
type StylePreset struct {
	Name              string  `json:"name"`
	ControlNetType    string  `json:"controlnetType"`
	Prompt            string  `json:"-"`
	NegativePrompt    string  `json:"-"`
	DenoiseStrength   float64 `json:"-"`
	ConditioningScale float64 `json:"-"`
	GuidanceScale     float64 `json:"-"`
}

// Apply merges the preset overrides into p.
func (s StylePreset) Apply(p ControlNetParams) ControlNetParams {
	if s.DenoiseStrength > 0 {
		p.DenoiseStrength = s.DenoiseStrength
	}
	if s.ConditioningScale > 0 {
		p.ConditioningScale = s.ConditioningScale
	}
	if s.GuidanceScale > 0 {
		p.GuidanceScale = s.GuidanceScale
	}
	return p
}

const (
	promptPrefix = "Restore and beautify the existing sigil. Preserve exact geometry and stroke paths. "
	negativeBase = "extra lines, decorative circle, mandala, compass, runes, glyphs, occult seal, " +
		"emblem, logo redesign, reinterpretation, frame, border, symmetry embellishment, " +
		"altered shape, new symbols, added elements, changed geometry"
)

var presets = map[string]StylePreset{
	"watercolor": {
		Name:           "watercolor",
		ControlNetType: ControlLineart,
		Prompt: promptPrefix + "Apply soft watercolor texture as surface treatment only. Translucent washes, " +
			"subtle color bleeding at edges. Paper texture visible. The sigil linework remains unchanged. " +
			"High-quality artistic enhancement, mystical symbol preserved exactly.",
		NegativePrompt:  negativeBase + ", distorted lines, thick outlines, cartoon, 3d render, photograph",
		DenoiseStrength: 0.30,
	},
	"ink_brush": {
		Name:           "ink_brush",
		ControlNetType: ControlLineart,
		Prompt: promptPrefix + "Apply traditional ink brush texture as surface treatment only. Sumi-e aesthetic, " +
			"ink wash gradients, rice paper texture. Zen calligraphy feel. " +
			"The sigil structure remains precisely as drawn.",
		NegativePrompt:  negativeBase + ", digital, modern, color",
		DenoiseStrength: 0.25,
	},
	"sacred_geometry": {
		Name:           "sacred_geometry",
		ControlNetType: ControlCanny,
		Prompt: promptPrefix + "Apply golden metallic sheen as surface treatment only. Sacred geometry aesthetic, " +
			"precise lines with subtle glow. Mathematical perfection in texture, not form. " +
			"The original sigil geometry is untouched.",
		NegativePrompt:    negativeBase + ", organic, messy",
		ConditioningScale: 1.25,
		DenoiseStrength:   0.22,
	},
	"gold_leaf": {
		Name:           "gold_leaf",
		ControlNetType: ControlCanny,
		Prompt: promptPrefix + "Apply gold leaf gilding texture as surface treatment only. Illuminated manuscript style, " +
			"precious metal sheen, ornate texture on the existing lines. Medieval luxury aesthetic. " +
			"The sigil shape remains exactly as designed.",
		NegativePrompt:    negativeBase + ", modern, photography",
		ConditioningScale: 1.20,
		DenoiseStrength:   0.25,
	},
	"cosmic": {
		Name:           "cosmic",
		ControlNetType: ControlLineart,
		Prompt: promptPrefix + "Apply ethereal cosmic glow as surface treatment only. Nebula colors, starlight, " +
			"celestial energy emanating from the unchanged sigil lines. Deep space background. " +
			"The sigil structure is preserved exactly.",
		NegativePrompt:  negativeBase + ", planets, faces, realistic photo",
		DenoiseStrength: 0.32,
	},
	"minimal_line": {
		Name:           "minimal_line",
		ControlNetType: ControlCanny,
		Prompt: promptPrefix + "Apply clean minimalist treatment as surface polish only. Crisp precise lines, " +
			"subtle paper texture, modern graphic design aesthetic. " +
			"The sigil geometry is preserved with absolute precision.",
		NegativePrompt:    negativeBase + ", texture, shading, embellishment, ornate",
		ConditioningScale: 1.30,
		DenoiseStrength:   0.18,
	},
}

// StyleNames returns the preset names sorted alphabetically.
func StyleNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Style looks up a preset by name.
func Style(name string) (StylePreset, error) {
	p, ok := presets[name]
	if !ok {
		return StylePreset{}, fmt.Errorf("%w: unknown style %q, available: %v", common.ErrorValidation, name, StyleNames())
	}
	return p, nil
}

// StyleInfo is the public description of a preset.
type StyleInfo struct {
	Name              string  `json:"name"`
	ControlNetType    string  `json:"controlnetType"`
	DenoiseStrength   float64 `json:"denoiseStrength"`
	ConditioningScale float64 `json:"conditioningScale"`
}

// Styles describes every preset with its effective parameters.
func Styles() []StyleInfo {
	def := DefaultControlNetParams()
	out := make([]StyleInfo, 0, len(presets))
	for _, n := range StyleNames() {
		p := presets[n]
		eff := p.Apply(def)
		out = append(out, StyleInfo{
			Name:              p.Name,
			ControlNetType:    p.ControlNetType,
			DenoiseStrength:   eff.DenoiseStrength,
			ConditioningScale: eff.ConditioningScale,
		})
	}
	return out
}
