// Package enhance implements the structure-preserving sigil enhancement
// pipeline: control image preprocessing, ControlNet generation through an
// inference backend, structure matching between the sigil and the generated
// image, and compositing the original strokes back onto drifted results.
package enhance
