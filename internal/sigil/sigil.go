// Package sigil turns an intention into a deterministic SVG symbol.
//
// The intention is distilled to its unique consonants, each consonant is placed
// on a 26-point wheel by alphabet position and the points are joined in order.
package sigil

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/anchor/internal/common"
)

const (
	viewBox     = 100.0
	center      = viewBox / 2
	wheelRadius = 40.0
	startRadius = 3.0
	barHalf     = 4.0
	strokeWidth = 2.0
)

// Distill keeps uppercase consonants of intention in first-seen order.
// When nothing is left the first letter of intention is used instead.
func Distill(intention string) string {
	var b strings.Builder
	seen := make(map[rune]bool)
	first := rune(0)

	for _, r := range intention {
		r = unicode.ToUpper(r)
		if r < 'A' || r > 'Z' {
			continue
		}
		if first == 0 {
			first = r
		}
		if strings.ContainsRune("AEIOU", r) || seen[r] {
			continue
		}
		seen[r] = true
		b.WriteRune(r)
	}

	if b.Len() == 0 && first != 0 {
		return string(first)
	}
	return b.String()
}

// Point is a coordinate inside the sigil view box.
type Point struct {
	X, Y float64
}

// WheelPoint returns the position of letter on the wheel. 'A' sits at the top
// and letters proceed clockwise.
func WheelPoint(letter rune) Point {
	idx := float64(unicode.ToUpper(letter) - 'A')
	angle := idx/26*2*math.Pi - math.Pi/2
	return Point{
		X: round2(center + wheelRadius*math.Cos(angle)),
		Y: round2(center + wheelRadius*math.Sin(angle)),
	}
}

// Path returns the wheel points of the distilled letters.
func Path(intention string) []Point {
	letters := Distill(intention)
	pts := make([]Point, 0, len(letters))
	for _, r := range letters {
		pts = append(pts, WheelPoint(r))
	}
	return pts
}

// Generate renders the sigil for intention as an SVG document.
func Generate(intention string) (string, error) {
	pts := Path(intention)
	if len(pts) == 0 {
		return "", fmt.Errorf("%w: intention has no letters", common.ErrorValidation)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g" width="%g" height="%g">`,
		viewBox, viewBox, viewBox, viewBox)
	fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="none" stroke="#000000" stroke-width="1" stroke-opacity="0.25"/>`,
		center, center, wheelRadius+4)

	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%g,%g", p.X, p.Y)
	}
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="#000000" stroke-width="%g" stroke-linecap="round" stroke-linejoin="round"/>`,
		strings.Join(coords, " "), strokeWidth)

	start := pts[0]
	fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="none" stroke="#000000" stroke-width="%g"/>`,
		start.X, start.Y, startRadius, strokeWidth)

	a, c := endBar(pts)
	fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#000000" stroke-width="%g" stroke-linecap="round"/>`,
		a.X, a.Y, c.X, c.Y, strokeWidth)

	b.WriteString(`</svg>`)
	return b.String(), nil
}

// endBar is perpendicular to the last segment, or radial for a single point.
func endBar(pts []Point) (Point, Point) {
	end := pts[len(pts)-1]
	var dx, dy float64
	if len(pts) > 1 {
		prev := pts[len(pts)-2]
		dx, dy = end.X-prev.X, end.Y-prev.Y
	} else {
		dx, dy = end.X-center, end.Y-center
	}
	l := math.Hypot(dx, dy)
	if l == 0 {
		dx, dy, l = 1, 0, 1
	}
	// unit normal
	nx, ny := -dy/l, dx/l
	return Point{round2(end.X + nx*barHalf), round2(end.Y + ny*barHalf)},
		Point{round2(end.X - nx*barHalf), round2(end.Y - ny*barHalf)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
