package enhance

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/sigil"
)

const testSize = 128

func testConfig() PreprocessConfig {
	c := DefaultPreprocessConfig()
	c.OutputSize = testSize
	return c
}

func testSigil(t *testing.T) string {
	t.Helper()
	svg, err := sigil.Generate("I am calm and confident")
	require.NoError(t, err)
	return svg
}

func countAbove(g *image.Gray, t uint8) int {
	n := 0
	for _, v := range g.Pix {
		if v > t {
			n++
		}
	}
	return n
}

// square draws a white filled square on black.
func square(size int, r image.Rectangle) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, size, size))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return g
}

func TestNormalizeSVG(t *testing.T) {
	out := normalizeSVG(`<svg width="40" height="20"><path d="M0 0" stroke="red" fill="blue"/></svg>`)
	assert.Contains(t, out, `viewBox="0 0 40 20"`)
	assert.Contains(t, out, `stroke="#FFFFFF"`)
	assert.Contains(t, out, `fill="none"`)
	assert.Contains(t, out, `stroke-width="2"`)

	out = normalizeSVG(`<svg><line/></svg>`)
	assert.Contains(t, out, `viewBox="0 0 100 100"`)
}

func TestRasterizeSVG(t *testing.T) {
	g, err := RasterizeSVG(testSigil(t), testSize)
	require.NoError(t, err)
	assert.Equal(t, testSize, g.Rect.Dx())
	assert.Positive(t, countAbove(g, 127))
	assert.Less(t, mean(g), 127.0)
}

func TestDecodeImage_RoundTrip(t *testing.T) {
	src := square(16, image.Rect(4, 4, 12, 12))
	url, err := EncodeDataURL(src)
	require.NoError(t, err)

	img, err := DecodeImage(url)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, toGray(img).Pix)

	raw, err := EncodeBase64(src)
	require.NoError(t, err)
	g, err := LoadSigil(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, g.Pix)
}

func TestDecodeImage_Invalid(t *testing.T) {
	_, err := DecodeImage("!!!not base64")
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = DecodeImage("aGVsbG8=")
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = LoadSigil("  ", testSize)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestThickenKernel(t *testing.T) {
	assert.Equal(t, 7, thickenKernel(DefaultPreprocessConfig()))

	c := DefaultPreprocessConfig()
	c.StrokeMultiplier = 1
	assert.Equal(t, 5, thickenKernel(c))

	c.StrokeMultiplier = 10
	assert.Equal(t, 13, thickenKernel(c))
}

func TestDilate_GrowsSinglePixel(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 9, 9))
	g.SetGray(4, 4, color.Gray{Y: 255})
	d := dilate(g, 3)
	assert.Equal(t, 255, int(d.GrayAt(4, 3).Y))
	assert.Equal(t, 255, int(d.GrayAt(5, 4).Y))
	assert.Equal(t, 255, int(d.GrayAt(5, 5).Y))
	assert.Equal(t, 0, int(d.GrayAt(4, 6).Y))
}

func TestThreshold_StrictlyAbove(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 1))
	copy(g.Pix, []uint8{0, 128, 129, 255})
	assert.Equal(t, []uint8{0, 0, 255, 255}, threshold(g, 128).Pix)
	assert.Equal(t, []uint8{0, 0, 0, 0}, threshold(g, 255).Pix)
}

func TestUnsharp_SteepensStep(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 32, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(100)
			if x >= 16 {
				v = 150
			}
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	out := unsharp(g, 1.2, 1.5)
	assert.Less(t, out.GrayAt(15, 1).Y, uint8(100))
	assert.Greater(t, out.GrayAt(16, 1).Y, uint8(150))
	assert.InDelta(t, 100, int(out.GrayAt(2, 1).Y), 3)
	assert.InDelta(t, 150, int(out.GrayAt(29, 1).Y), 3)
}

func TestPad_CentersContent(t *testing.T) {
	g := square(100, image.Rect(0, 0, 10, 10))
	out, bounds := pad(g, 0.12)
	assert.Equal(t, 124, out.Rect.Dx())
	assert.Equal(t, image.Rect(57, 57, 66, 66), bounds)
	assert.Equal(t, uint8(255), out.GrayAt(60, 60).Y)
	assert.Equal(t, uint8(0), out.GrayAt(5, 5).Y)

	empty := image.NewGray(image.Rect(0, 0, 20, 20))
	same, b := pad(empty, 0.12)
	assert.Same(t, empty, same)
	assert.Equal(t, image.Rect(0, 0, 20, 20), b)
}

func TestPreprocess_SVG(t *testing.T) {
	res, err := Preprocess(testSigil(t), testConfig())
	require.NoError(t, err)

	assert.Equal(t, testSize, res.Control.Rect.Dx())
	assert.Equal(t, testSize, res.StrokeMask.Rect.Dy())

	strokes := countAbove(res.StrokeMask, 0)
	assert.Positive(t, strokes)
	for _, v := range res.StrokeMask.Pix {
		assert.True(t, v == 0 || v == 255)
	}
	// dilated mask covers the stroke mask
	for i, v := range res.StrokeMask.Pix {
		if v == 255 {
			require.Equal(t, uint8(255), res.DilatedMask.Pix[i])
		}
	}
	assert.Greater(t, countAbove(res.DilatedMask, 0), strokes)
	assert.NotContains(t, res.Steps, "Inverted colors (was white background)")
}

func TestPreprocess_InvertsWhiteBackground(t *testing.T) {
	g := invert(square(testSize, image.Rect(40, 40, 90, 50)))
	in, err := EncodeDataURL(g)
	require.NoError(t, err)

	res, err := Preprocess(in, testConfig())
	require.NoError(t, err)
	assert.Contains(t, res.Steps, "Inverted colors (was white background)")
	assert.Less(t, mean(res.Control), 127.0)
	assert.Positive(t, countAbove(res.StrokeMask, 0))
}
