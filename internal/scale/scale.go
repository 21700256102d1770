// Package scale derives the pixel-to-millimeter transform from a
// reference measurement and applies it to traced paths. The transform
// is computed once and applied uniformly, so every shape in the output
// scales consistently.
package scale

import (
	"fmt"
	"math"

	"github.com/161sam/sketch2cad/pkg/geometry"
)

// Error reports an invalid or degenerate calibration reference.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "calibrate: " + e.Reason
}

// Reference asserts that the segment between two pixel coordinates
// spans a known real-world length in millimeters.
type Reference struct {
	P0, P1   geometry.Point2D
	LengthMM float64
}

// Transform is a uniform pixel-to-millimeter mapping: millimeters =
// pixels * MMPerPixel + Offset. The zero Offset maps the pixel origin
// to the world origin.
type Transform struct {
	MMPerPixel float64
	Offset     geometry.Point2D
}

// Calibrate computes the scale factor from a reference measurement.
func Calibrate(ref Reference) (Transform, error) {
	if ref.LengthMM <= 0 {
		return Transform{}, &Error{
			Reason: fmt.Sprintf("reference length must be > 0 mm, got %g", ref.LengthMM),
		}
	}

	px := ref.P0.Distance(ref.P1)
	if px == 0 {
		return Transform{}, &Error{Reason: "reference points coincide (zero pixel distance)"}
	}

	return FromMMPerPixel(ref.LengthMM / px)
}

// FromMMPerPixel builds a transform from an explicit scale factor.
func FromMMPerPixel(mmPerPixel float64) (Transform, error) {
	if mmPerPixel <= 0 || math.IsInf(mmPerPixel, 0) || math.IsNaN(mmPerPixel) {
		return Transform{}, &Error{
			Reason: fmt.Sprintf("scale factor must be positive and finite, got %g", mmPerPixel),
		}
	}
	return Transform{MMPerPixel: mmPerPixel}, nil
}

// CalibrateFromPairs fits a uniform scale to two or more pixel/world
// point correspondences by least squares. The residual of the fit must
// stay under maxResidualMM; a larger residual means the
// correspondences disagree with a uniform scale and the calibration
// would silently mis-scale the drawing.
func CalibrateFromPairs(pixel, world []geometry.Point2D, maxResidualMM float64) (Transform, error) {
	if len(pixel) != len(world) || len(pixel) < 2 {
		return Transform{}, &Error{
			Reason: fmt.Sprintf("need at least 2 point pairs, got %d/%d", len(pixel), len(world)),
		}
	}

	fit, factor, err := geometry.FitSimilarity(pixel, world)
	if err != nil {
		return Transform{}, &Error{Reason: err.Error()}
	}

	if resid := geometry.FitResidual(pixel, world, fit); resid > maxResidualMM {
		return Transform{}, &Error{
			Reason: fmt.Sprintf("reference residual %.3g mm exceeds %.3g mm", resid, maxResidualMM),
		}
	}

	t, err := FromMMPerPixel(factor)
	if err != nil {
		return Transform{}, err
	}

	// Anchor so the fit and the returned transform agree at the pixel
	// centroid; rotation in the fit is discarded (isotropic scale
	// only, off-axis correction is out of scope).
	pc := geometry.Centroid(pixel)
	wc := geometry.Centroid(world)
	return t.WithAnchor(pc, wc), nil
}

// WithAnchor returns a transform with the same scale whose output maps
// pixelAnchor exactly onto worldAnchor.
func (t Transform) WithAnchor(pixelAnchor, worldAnchor geometry.Point2D) Transform {
	scaled := pixelAnchor.Scale(t.MMPerPixel)
	return Transform{
		MMPerPixel: t.MMPerPixel,
		Offset:     worldAnchor.Sub(scaled),
	}
}

// Affine returns the transform as an affine matrix.
func (t Transform) Affine() geometry.AffineTransform {
	return geometry.Translation(t.Offset.X, t.Offset.Y).
		Compose(geometry.UniformScale(t.MMPerPixel))
}

// Apply maps pixel-space paths into world space. Inputs are read-only;
// each output path is a fresh copy. Order is preserved.
func (t Transform) Apply(paths []geometry.PixelPath) []geometry.WorldPath {
	affine := t.Affine()
	out := make([]geometry.WorldPath, len(paths))
	for i, p := range paths {
		out[i] = geometry.WorldPath{Path: p.Path.Transform(affine)}
	}
	return out
}

// ApplyPoint maps a single pixel coordinate into world space.
func (t Transform) ApplyPoint(p geometry.Point2D) geometry.Point2D {
	return t.Affine().Apply(p)
}
