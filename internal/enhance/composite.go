package enhance

import (
	"image"
	"image/color"
)

const (
	inpaintRadius = 16
	featherSigma  = 2.0
)

// CompositeResult holds the original strokes drawn over a generated background.
type CompositeResult struct {
	Image               *image.RGBA
	Background          *image.RGBA
	Mask                *image.Gray
	Color               color.RGBA
	StructureGuaranteed bool
}

// inpaint fills the masked area of img from nearby unmasked pixels using a
// normalized box filter. Pixels with no unmasked neighbour take the mean
// unmasked color.
func inpaint(img *image.RGBA, mask *image.Gray, radius int) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	weight := make([]float64, w*h)
	planes := [3][]float64{make([]float64, w*h), make([]float64, w*h), make([]float64, w*h)}
	var fallback [3]float64
	var count float64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if mask.Pix[y*mask.Stride+x] > contentThreshold {
				continue
			}
			o := y*img.Stride + x*4
			weight[i] = 1
			for c := 0; c < 3; c++ {
				v := float64(img.Pix[o+c])
				planes[c][i] = v
				fallback[c] += v
			}
			count++
		}
	}
	if count > 0 {
		for c := range fallback {
			fallback[c] /= count
		}
	}

	ws := integral(weight, w, h)
	var sums [3][]float64
	for c := range planes {
		sums[c] = integral(planes[c], w, h)
	}

	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if weight[y*w+x] == 1 {
				continue
			}
			o := y*out.Stride + x*4
			n, _ := boxSum(ws, w, h, x, y, radius)
			for c := 0; c < 3; c++ {
				v := fallback[c]
				if n > 0 {
					s, _ := boxSum(sums[c], w, h, x, y, radius)
					v = s / n
				}
				out.Pix[o+c] = clamp8(v)
			}
			out.Pix[o+3] = 255
		}
	}
	return out
}

// sampleColor returns the most common color of img under mask after
// quantizing each channel to steps of 32. White when the mask is empty.
func sampleColor(img *image.RGBA, mask *image.Gray) color.RGBA {
	counts := make(map[[3]uint8]int)
	var best [3]uint8
	bestN := 0
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] <= contentThreshold {
				continue
			}
			o := y*img.Stride + x*4
			k := [3]uint8{img.Pix[o] / 32 * 32, img.Pix[o+1] / 32 * 32, img.Pix[o+2] / 32 * 32}
			counts[k]++
			// ties keep the color seen first
			if counts[k] > bestN {
				best, bestN = k, counts[k]
			}
		}
	}
	if bestN == 0 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{R: best[0], G: best[1], B: best[2], A: 255}
}

// blend draws c over bg with per-pixel alpha.
func blend(bg *image.RGBA, c color.RGBA, alpha *image.Gray) *image.RGBA {
	out := image.NewRGBA(bg.Rect)
	w, h := bg.Rect.Dx(), bg.Rect.Dy()
	src := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := float64(alpha.Pix[y*alpha.Stride+x]) / 255
			o := y*bg.Stride + x*4
			for i := 0; i < 3; i++ {
				out.Pix[o+i] = clamp8(src[i]*a + float64(bg.Pix[o+i])*(1-a))
			}
			out.Pix[o+3] = 255
		}
	}
	return out
}

// CompositeOriginal draws the original sigil strokes over generated so the
// geometry is exact. The stroke color is sampled from generated.
func CompositeOriginal(original string, generated image.Image, cfg PreprocessConfig) (*CompositeResult, error) {
	ctl, err := Preprocess(original, cfg)
	if err != nil {
		return nil, err
	}
	return compositeControl(ctl, generated), nil
}

func compositeControl(ctl *ControlImage, generated image.Image) *CompositeResult {
	size := ctl.Control.Rect.Dx()
	var gen *image.RGBA
	if b := generated.Bounds(); b.Dx() == size && b.Dy() == size {
		gen = toRGBA(generated)
	} else {
		gen = resizeRGBA(generated, size, size)
	}

	background := inpaint(gen, ctl.DilatedMask, inpaintRadius)
	c := sampleColor(gen, ctl.StrokeMask)
	alpha := gaussianBlur(ctl.StrokeMask, featherSigma)
	// feathering never reaches past the protected area
	for i, v := range ctl.DilatedMask.Pix {
		if v == 0 {
			alpha.Pix[i] = 0
		}
	}

	return &CompositeResult{
		Image:               blend(background, c, alpha),
		Background:          background,
		Mask:                ctl.StrokeMask,
		Color:               c,
		StructureGuaranteed: true,
	}
}
