package enhance

import (
	"fmt"
	"image"
)

// ControlImage is the preprocessed sigil handed to ControlNet.
type ControlImage struct {
	// Control has white strokes on black.
	Control *image.Gray
	// StrokeMask is the binarized control image.
	StrokeMask *image.Gray
	// DilatedMask protects strokes plus a margin during compositing.
	DilatedMask *image.Gray
	// Bounds is the content box inside the padded image.
	Bounds image.Rectangle
	Steps  []string
}

// thickenKernel returns the odd dilation kernel size for cfg.
func thickenKernel(cfg PreprocessConfig) int {
	k := max(cfg.MinStrokeWidth, min(cfg.MaxStrokeWidth, int(3*cfg.StrokeMultiplier)))
	if k%2 == 0 {
		k++
	}
	return k
}

// pad centers the content of g on a black square grown by percent on each side.
func pad(g *image.Gray, percent float64) (*image.Gray, image.Rectangle) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	box, ok := bbox(g, 10)
	if !ok {
		return g, image.Rect(0, 0, w, h)
	}
	side := max(w, h)
	padPx := int(float64(side) * percent)
	size := side + 2*padPx

	out := image.NewGray(image.Rect(0, 0, size, size))
	cw, ch := box.Dx()-1, box.Dy()-1
	px, py := (size-cw)/2, (size-ch)/2

	for y := 0; y < box.Dy(); y++ {
		src := g.Pix[(box.Min.Y+y)*g.Stride+box.Min.X : (box.Min.Y+y)*g.Stride+box.Max.X]
		dy := py + y
		if dy >= size {
			break
		}
		n := min(len(src), size-px)
		copy(out.Pix[dy*out.Stride+px:dy*out.Stride+px+n], src[:n])
	}
	return out, image.Rect(px, py, px+cw, py+ch)
}

// Preprocess turns a sigil (SVG, data URL or base64 PNG) into a ControlNet
// control image and its stroke masks.
func Preprocess(input string, cfg PreprocessConfig) (*ControlImage, error) {
	size := cfg.OutputSize
	img, err := LoadSigil(input, size)
	if err != nil {
		return nil, err
	}
	res := &ControlImage{}
	res.Steps = append(res.Steps, fmt.Sprintf("Loaded %dx%d", img.Rect.Dx(), img.Rect.Dy()))

	img = resizeGray(img, size, size)
	res.Steps = append(res.Steps, fmt.Sprintf("Resized to %dx%d", size, size))

	if mean(img) > 127 {
		img = invert(img)
		res.Steps = append(res.Steps, "Inverted colors (was white background)")
	}

	img = dilate(img, thickenKernel(cfg))
	res.Steps = append(res.Steps, fmt.Sprintf("Thickened strokes (multiplier: %g)", cfg.StrokeMultiplier))

	padded, bounds := pad(img, cfg.PaddingPercent)
	res.Bounds = bounds
	res.Steps = append(res.Steps, fmt.Sprintf("Added %.0f%% padding", cfg.PaddingPercent*100))

	control := resizeGray(padded, size, size)
	control = unsharp(control, cfg.EdgeEnhanceSigma, 1.5)
	res.Steps = append(res.Steps, "Enhanced edges")

	res.Control = control
	res.StrokeMask = threshold(control, 128)
	res.Steps = append(res.Steps, "Created stroke mask")

	res.DilatedMask = dilate(res.StrokeMask, cfg.MaskDilationPx*2+1)
	res.Steps = append(res.Steps, fmt.Sprintf("Created dilated mask (%dpx)", cfg.MaskDilationPx))

	return res, nil
}
