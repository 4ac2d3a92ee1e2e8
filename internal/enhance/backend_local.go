package enhance

import (
	"context"
	"image"
	"image/color"
)

// TintBackend renders the control image in a per-style color on a dark
// background. The server falls back to it when no inference token is
// configured so the pipeline stays usable offline.
type TintBackend struct{}

var tints = map[string]color.RGBA{
	"watercolor":      {R: 91, G: 141, B: 184, A: 255},
	"ink_brush":       {R: 235, G: 235, B: 225, A: 255},
	"sacred_geometry": {R: 212, G: 175, B: 55, A: 255},
	"gold_leaf":       {R: 201, G: 162, B: 39, A: 255},
	"cosmic":          {R: 123, G: 79, B: 214, A: 255},
	"minimal_line":    {R: 240, G: 240, B: 240, A: 255},
}

func (TintBackend) Generate(ctx context.Context, in GenerationInput) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := DecodeImage(in.ControlImage)
	if err != nil {
		return nil, err
	}
	ctl := toGray(src)
	tint, ok := tints[in.Style.Name]
	if !ok {
		tint = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	bg := [3]float64{12, 10, 24}
	fg := [3]float64{float64(tint.R), float64(tint.G), float64(tint.B)}

	out := image.NewRGBA(ctl.Rect)
	for i, v := range ctl.Pix {
		a := float64(v) / 255
		o := i * 4
		for c := 0; c < 3; c++ {
			out.Pix[o+c] = clamp8(fg[c]*a + bg[c]*(1-a))
		}
		out.Pix[o+3] = 255
	}
	return out, nil
}
