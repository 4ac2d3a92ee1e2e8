package enhance

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	xdraw "golang.org/x/image/draw"
)

// toGray copies img into a zero-origin grayscale image.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(g, g.Bounds(), img, b.Min, xdraw.Src)
	return g
}

// toRGBA copies img into a zero-origin RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// redPlane keeps the red channel of a bild result. Every filter here runs
// on gray input, so all three channels carry the same value.
func redPlane(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < b.Dx(); x++ {
			g.Pix[y*g.Stride+x] = row[x*4]
		}
	}
	return g
}

func resizeGray(src *image.Gray, w, h int) *image.Gray {
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func resizeRGBA(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func mean(g *image.Gray) float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range g.Pix {
		sum += uint64(v)
	}
	return float64(sum) / float64(len(g.Pix))
}

func invert(g *image.Gray) *image.Gray {
	return redPlane(effect.Invert(g))
}

// threshold maps pixels strictly above t to 255 and the rest to 0.
func threshold(g *image.Gray, t uint8) *image.Gray {
	if t == 255 {
		return image.NewGray(g.Rect)
	}
	return segment.Threshold(g, t+1)
}

// dilate is a grayscale max filter over a square window of odd size k.
func dilate(g *image.Gray, k int) *image.Gray {
	return redPlane(effect.Dilate(g, float64(k/2)))
}

// gaussianKernel returns a normalized 1-D Gaussian of the given radius.
func gaussianKernel(radius int, sigma float64) convolution.Matrix {
	k := convolution.NewKernel(2*radius+1, 1)
	for i := -radius; i <= radius; i++ {
		k.Matrix[i+radius] = math.Exp(-float64(i*i) / (2 * sigma * sigma))
	}
	return k.Normalized()
}

// separable runs k horizontally then vertically over g with edge extension.
func separable(g *image.Gray, k convolution.Matrix) *image.Gray {
	opts := &convolution.Options{}
	out := convolution.Convolve(g, k, opts)
	return redPlane(convolution.Convolve(out, k.Transposed(), opts))
}

func gaussianBlur(g *image.Gray, sigma float64) *image.Gray {
	return separable(g, gaussianKernel(max(int(math.Ceil(3*sigma)), 1), sigma))
}

// unsharp sharpens g: out = g + (g - blur(g)) * amount.
func unsharp(g *image.Gray, sigma, amount float64) *image.Gray {
	blurred := gaussianBlur(g, sigma)
	out := image.NewGray(g.Rect)
	for i, v := range g.Pix {
		s := float64(v)
		out.Pix[i] = clamp8(s + (s-float64(blurred.Pix[i]))*amount)
	}
	return out
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

// integral builds a summed-area table with a one pixel zero border.
func integral(p []float64, w, h int) []float64 {
	s := make([]float64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var row float64
		for x := 0; x < w; x++ {
			row += p[y*w+x]
			s[(y+1)*(w+1)+x+1] = s[y*(w+1)+x+1] + row
		}
	}
	return s
}

// boxSum returns the sum over the clamped square of radius r around (x, y)
// and the number of pixels in it.
func boxSum(s []float64, w, h, x, y, r int) (float64, int) {
	x0, y0 := max(x-r, 0), max(y-r, 0)
	x1, y1 := min(x+r+1, w), min(y+r+1, h)
	W := w + 1
	sum := s[y1*W+x1] - s[y0*W+x1] - s[y1*W+x0] + s[y0*W+x0]
	return sum, (x1 - x0) * (y1 - y0)
}

// bbox returns the bounding box of pixels brighter than t, or false when none are.
func bbox(g *image.Gray, t uint8) (image.Rectangle, bool) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.Pix[y*g.Stride+x] > t {
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
