package geometry

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveHintJSONRoundTrip(t *testing.T) {
	hint := CurveHint{
		Index: 1,
		C1:    Point2D{X: 3, Y: 4},
		C2:    Point2D{X: 5, Y: 6},
	}

	data, err := json.Marshal(hint)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"c1"`)
	assert.Contains(t, string(data), `"c2"`)

	var got CurveHint
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, hint, got)
}

func TestPathLength(t *testing.T) {
	open := Path{Points: []Point2D{{0, 0}, {3, 4}, {3, 8}}}
	assert.InDelta(t, 9.0, open.Length(), 1e-12)

	closed := Path{Points: []Point2D{{0, 0}, {4, 0}, {4, 3}}, Closed: true}
	assert.InDelta(t, 12.0, closed.Length(), 1e-12)
}

func TestPathSignedArea(t *testing.T) {
	ccw := Path{Points: []Point2D{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, Closed: true}
	assert.InDelta(t, 16.0, ccw.SignedArea(), 1e-12)

	cw := Path{Points: []Point2D{{0, 0}, {0, 4}, {4, 4}, {4, 0}}, Closed: true}
	assert.InDelta(t, -16.0, cw.SignedArea(), 1e-12)
}

func TestPathTransformDoesNotMutate(t *testing.T) {
	p := Path{
		Points: []Point2D{{1, 2}, {3, 4}},
		Curves: []CurveHint{{Index: 0, C1: Point2D{1.5, 2.5}, C2: Point2D{2.5, 3.5}}},
		Layer:  "OUTLINE",
	}

	out := p.Transform(UniformScale(2))
	assert.Equal(t, Point2D{2, 4}, out.Points[0])
	assert.Equal(t, Point2D{3, 5}, out.Curves[0].C1)
	assert.Equal(t, "OUTLINE", out.Layer)

	// Original untouched.
	assert.Equal(t, Point2D{1, 2}, p.Points[0])
	assert.Equal(t, Point2D{1.5, 2.5}, p.Curves[0].C1)
}

func TestPerpendicularDistance(t *testing.T) {
	d := PerpendicularDistance(Point2D{5, 5}, Point2D{0, 0}, Point2D{10, 0})
	assert.InDelta(t, 5.0, d, 1e-12)

	// Degenerate chord falls back to point distance.
	d = PerpendicularDistance(Point2D{3, 4}, Point2D{0, 0}, Point2D{0, 0})
	assert.InDelta(t, 5.0, d, 1e-12)
}

func TestFlattenCubicBound(t *testing.T) {
	p0 := Point2D{0, 0}
	c1 := Point2D{10, 20}
	c2 := Point2D{30, 20}
	p3 := Point2D{40, 0}

	const tol = 0.25
	flat := FlattenCubic(p0, c1, c2, p3, tol)
	require.GreaterOrEqual(t, len(flat), 3)
	assert.Equal(t, p0, flat[0])
	assert.Equal(t, p3, flat[len(flat)-1])

	// Sample the exact curve densely; every sample must be within tol
	// of the flattened polyline.
	for i := 0; i <= 200; i++ {
		u := float64(i) / 200
		pt := cubicPoint(p0, c1, c2, p3, u)
		best := math.Inf(1)
		for j := 0; j < len(flat)-1; j++ {
			if d := PointToSegmentDistance(pt, flat[j], flat[j+1]); d < best {
				best = d
			}
		}
		assert.LessOrEqual(t, best, tol, "sample t=%.3f deviates", u)
	}
}

func cubicPoint(p0, c1, c2, p3 Point2D, u float64) Point2D {
	v := 1 - u
	return Point2D{
		X: v*v*v*p0.X + 3*v*v*u*c1.X + 3*v*u*u*c2.X + u*u*u*p3.X,
		Y: v*v*v*p0.Y + 3*v*v*u*c1.Y + 3*v*u*u*c2.Y + u*u*u*p3.Y,
	}
}

func TestFlattenPathWithHints(t *testing.T) {
	p := Path{
		Points: []Point2D{{0, 0}, {40, 0}, {40, 40}},
		Curves: []CurveHint{{Index: 0, C1: Point2D{10, 20}, C2: Point2D{30, 20}}},
	}

	flat := FlattenPath(p, 0.5)
	assert.Empty(t, flat.Curves)
	assert.Greater(t, len(flat.Points), 3)
	assert.Equal(t, Point2D{40, 40}, flat.Points[len(flat.Points)-1])
}

func TestFitSimilarityRecoversScale(t *testing.T) {
	src := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	dst := make([]Point2D, len(src))
	for i, p := range src {
		dst[i] = UniformScale(0.5).Apply(p).Add(Point2D{3, -2})
	}

	got, scale, err := FitSimilarity(src, dst)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scale, 1e-9)
	assert.InDelta(t, 0.0, FitResidual(src, dst, got), 1e-9)
}

func TestFitAffineExact(t *testing.T) {
	src := []Point2D{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	truth := AffineTransform{A: 2, B: 0.5, TX: 3, C: -0.25, D: 1.5, TY: -1}
	dst := make([]Point2D, len(src))
	for i, p := range src {
		dst[i] = truth.Apply(p)
	}

	got, err := FitAffine(src, dst)
	require.NoError(t, err)
	assert.InDelta(t, truth.A, got.A, 1e-9)
	assert.InDelta(t, truth.TY, got.TY, 1e-9)

	_, err = FitAffine(src[:2], dst[:2])
	assert.Error(t, err)
}
