package enhance

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/dmitrijs2005/anchor/internal/common"
)

var (
	reSVGWidth  = regexp.MustCompile(`width="(\d+)"`)
	reSVGHeight = regexp.MustCompile(`height="(\d+)"`)
	reStroke    = regexp.MustCompile(`stroke="[^"]*"`)
	reFill      = regexp.MustCompile(`fill="[^"]*"`)
)

// normalizeSVG forces white unfilled strokes and makes sure a viewBox exists.
func normalizeSVG(svg string) string {
	out := svg
	if !strings.Contains(out, "viewBox") {
		w := reSVGWidth.FindStringSubmatch(out)
		h := reSVGHeight.FindStringSubmatch(out)
		box := "0 0 100 100"
		if w != nil && h != nil {
			box = fmt.Sprintf("0 0 %s %s", w[1], h[1])
		}
		out = strings.Replace(out, "<svg", `<svg viewBox="`+box+`"`, 1)
	}
	out = reStroke.ReplaceAllString(out, `stroke="#FFFFFF"`)
	out = reFill.ReplaceAllString(out, `fill="none"`)
	if !strings.Contains(out, "stroke-width") {
		out = strings.ReplaceAll(out, "<path ", `<path stroke-width="2" `)
	}
	return out
}

// RasterizeSVG renders svg as white strokes on black at size x size.
func RasterizeSVG(svg string, size int) (*image.Gray, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(normalizeSVG(svg)), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: parse svg: %v", common.ErrorValidation, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	// transparent pixels are premultiplied to black
	return toGray(rgba), nil
}

// DecodeImage decodes a PNG or JPEG given as a data URL or raw base64.
func DecodeImage(s string) (image.Image, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, fmt.Errorf("%w: malformed data url", common.ErrorValidation)
		}
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", common.ErrorValidation, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", common.ErrorValidation, err)
	}
	return img, nil
}

// LoadSigil accepts an SVG document, a data URL or raw base64 image and
// returns it in grayscale. SVGs are rasterized at size.
func LoadSigil(input string, size int) (*image.Gray, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty sigil", common.ErrorValidation)
	}
	if strings.HasPrefix(trimmed, "<svg") || strings.HasPrefix(trimmed, "<?xml") {
		return RasterizeSVG(trimmed, size)
	}
	img, err := DecodeImage(trimmed)
	if err != nil {
		return nil, err
	}
	return toGray(img), nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 returns img as base64 PNG without a data URL prefix.
func EncodeBase64(img image.Image) (string, error) {
	b, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// EncodeDataURL returns img as a PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	s, err := EncodeBase64(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + s, nil
}
