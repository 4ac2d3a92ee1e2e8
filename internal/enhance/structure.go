package enhance

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/histogram"
)

// Classifications of a structure match.
const (
	ClassPreserved   = "Structure Preserved"
	ClassComposited  = "Structure Preserved (Composited)"
	ClassArtistic    = "More Artistic"
	ClassStyleDrift  = "Style Drift"
	cannyLow         = 50
	cannyHigh        = 150
	contentThreshold = 127
)

// MatchResult scores how well a generated image preserves the sigil.
type MatchResult struct {
	IoU                float64 `json:"iouScore"`
	EdgeOverlap        float64 `json:"edgeOverlapScore"`
	Combined           float64 `json:"combinedScore"`
	StructurePreserved bool    `json:"structurePreserved"`
	Classification     string  `json:"classification"`
}

// Classify names a combined score.
func Classify(score float64, cfg StructureConfig) string {
	switch {
	case score >= cfg.Threshold:
		return ClassPreserved
	case score >= cfg.MoreArtisticCutoff:
		return ClassArtistic
	default:
		return ClassStyleDrift
	}
}

// IoU returns intersection over union of the pixels above 127 in a and b.
// Two empty masks are a perfect match.
func IoU(a, b *image.Gray) float64 {
	var inter, union int
	for i := range a.Pix {
		pa, pb := a.Pix[i] > contentThreshold, b.Pix[i] > contentThreshold
		if pa && pb {
			inter++
		}
		if pa || pb {
			union++
		}
	}
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}

// Stroke extraction methods.
const (
	ExtractAdaptive = "adaptive"
	ExtractOtsu     = "otsu"

	adaptiveRadius = 10
	adaptiveSigma  = 3.5
	adaptiveC      = 5
)

// ExtractStrokes binarizes a generated image with the adaptive method.
func ExtractStrokes(g *image.Gray) *image.Gray {
	return ExtractStrokesWith(g, ExtractAdaptive)
}

// ExtractStrokesWith binarizes a generated image so strokes end up white
// whatever the background color. The adaptive method marks a pixel as
// stroke when it is at least adaptiveC darker than the Gaussian-weighted
// mean of its 21px neighbourhood, so shading across the background does not
// leak into the mask. The otsu method uses one global threshold.
func ExtractStrokesWith(g *image.Gray, method string) *image.Gray {
	var out *image.Gray
	switch method {
	case ExtractOtsu:
		out = threshold(g, otsu(g))
	default:
		// orient to a light background so strokes are the dark side
		src := g
		if mean(g) <= 127 {
			src = invert(g)
		}
		local := separable(src, gaussianKernel(adaptiveRadius, adaptiveSigma))
		out = image.NewGray(src.Rect)
		for i, v := range src.Pix {
			if int(v) > int(local.Pix[i])-adaptiveC {
				out.Pix[i] = 255
			}
		}
	}
	if mean(out) > 127 {
		out = invert(out)
	}
	return out
}

// otsu returns the level that maximizes between-class variance of g.
func otsu(g *image.Gray) uint8 {
	hist := histogram.NewRGBAHistogram(g).R.Bins
	total := len(g.Pix)
	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}
	var sumB, best float64
	var wB int
	var level uint8
	for i, n := range hist {
		wB += n
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * n)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		if v := float64(wB) * float64(wF) * (mB - mF) * (mB - mF); v > best {
			best, level = v, uint8(i)
		}
	}
	return level
}

// Sobel kernels. Normalized divides them by 8 so a signed response fits
// a byte biased by sobelBias.
var (
	sobelX = &convolution.Kernel{Matrix: []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}, Width: 3, Height: 3}
	sobelY = &convolution.Kernel{Matrix: []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}, Width: 3, Height: 3}
)

const sobelBias = 128

// sobel returns the L1 gradient magnitude of g.
func sobel(g *image.Gray) []float64 {
	opts := &convolution.Options{Bias: sobelBias, KeepAlpha: true}
	gx := convolution.Convolve(g, sobelX.Normalized(), opts)
	gy := convolution.Convolve(g, sobelY.Normalized(), opts)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	mag := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := y*gx.Stride + x*4
			dx := float64(gx.Pix[o]) - sobelBias
			dy := float64(gy.Pix[o]) - sobelBias
			mag[y*w+x] = 8 * (math.Abs(dx) + math.Abs(dy))
		}
	}
	return mag
}

// Edges detects edges with hysteresis: pixels above high are edges, pixels
// above low are edges when connected to one.
func Edges(g *image.Gray, low, high float64) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	mag := sobel(g)
	out := image.NewGray(image.Rect(0, 0, w, h))
	var stack []int
	for i, m := range mag {
		if m >= high {
			out.Pix[i] = 255
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				xx, yy := x+dx, y+dy
				if xx < 0 || yy < 0 || xx >= w || yy >= h {
					continue
				}
				j := yy*w + xx
				if out.Pix[j] == 0 && mag[j] >= low {
					out.Pix[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

// EdgeOverlap is the F1 of edges of a found near edges of b and vice versa,
// within tolerance pixels. It is 0 when either image has no edges.
func EdgeOverlap(a, b *image.Gray, tolerance int) float64 {
	ea := Edges(a, cannyLow, cannyHigh)
	eb := Edges(b, cannyLow, cannyHigh)
	da, db := ea, eb
	if tolerance > 0 {
		da = dilate(ea, tolerance*2+1)
		db = dilate(eb, tolerance*2+1)
	}

	var na, nb, fwd, bwd int
	for i := range ea.Pix {
		if ea.Pix[i] > 0 {
			na++
			if db.Pix[i] > 0 {
				fwd++
			}
		}
		if eb.Pix[i] > 0 {
			nb++
			if da.Pix[i] > 0 {
				bwd++
			}
		}
	}
	if na == 0 || nb == 0 {
		return 0
	}
	f, b2 := float64(fwd)/float64(na), float64(bwd)/float64(nb)
	if f+b2 == 0 {
		return 0
	}
	return 2 * f * b2 / (f + b2)
}

// MatchStructure compares the original stroke mask with a generated image.
func MatchStructure(original, generated image.Image, cfg StructureConfig) MatchResult {
	orig := toGray(original)
	gen := toGray(generated)

	w := min(orig.Rect.Dx(), gen.Rect.Dx())
	h := min(orig.Rect.Dy(), gen.Rect.Dy())
	orig = resizeGray(orig, w, h)
	gen = resizeGray(gen, w, h)

	origBin := threshold(orig, cfg.BinarizeThreshold)
	genBin := ExtractStrokesWith(gen, cfg.ExtractMethod)

	iou := IoU(origBin, genBin)
	edge := EdgeOverlap(orig, gen, cfg.EdgeTolerancePx)
	combined := cfg.IoUWeight*iou + cfg.EdgeWeight*edge

	return MatchResult{
		IoU:                iou,
		EdgeOverlap:        edge,
		Combined:           combined,
		StructurePreserved: combined >= cfg.Threshold,
		Classification:     Classify(combined, cfg),
	}
}
