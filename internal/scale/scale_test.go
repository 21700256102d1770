package scale

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/161sam/sketch2cad/pkg/geometry"
)

func TestCalibrateFromReference(t *testing.T) {
	// 200 px correspond to 100 mm: 0.5 mm per pixel.
	ref := Reference{
		P0:       geometry.Point2D{X: 60, Y: 260},
		P1:       geometry.Point2D{X: 260, Y: 260},
		LengthMM: 100,
	}

	tr, err := Calibrate(ref)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tr.MMPerPixel, 1e-12)
	assert.Equal(t, geometry.Point2D{}, tr.Offset)
}

func TestCalibrateDiagonalReference(t *testing.T) {
	ref := Reference{
		P0:       geometry.Point2D{X: 0, Y: 0},
		P1:       geometry.Point2D{X: 30, Y: 40}, // 50 px
		LengthMM: 25,
	}

	tr, err := Calibrate(ref)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tr.MMPerPixel, 1e-12)
}

func TestCalibrateDegenerateReference(t *testing.T) {
	p := geometry.Point2D{X: 10, Y: 10}

	_, err := Calibrate(Reference{P0: p, P1: p, LengthMM: 50})
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Error(), "coincide")

	_, err = Calibrate(Reference{P0: p, P1: geometry.Point2D{X: 20, Y: 10}, LengthMM: 0})
	require.True(t, errors.As(err, &cerr))

	_, err = Calibrate(Reference{P0: p, P1: geometry.Point2D{X: 20, Y: 10}, LengthMM: -5})
	require.True(t, errors.As(err, &cerr))
}

func TestFromMMPerPixelRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := FromMMPerPixel(v)
		var cerr *Error
		assert.True(t, errors.As(err, &cerr), "value %g", v)
	}
}

func TestApplyScalesEveryCoordinate(t *testing.T) {
	tr, err := FromMMPerPixel(0.25)
	require.NoError(t, err)

	pixel := []geometry.PixelPath{
		{Path: geometry.Path{
			Points: []geometry.Point2D{{X: 4, Y: 8}, {X: 40, Y: 8}, {X: 40, Y: 80}},
			Closed: true,
			Layer:  "OUTLINE",
		}},
	}

	world := tr.Apply(pixel)
	require.Len(t, world, 1)
	assert.Equal(t, geometry.Point2D{X: 1, Y: 2}, world[0].Points[0])
	assert.Equal(t, geometry.Point2D{X: 10, Y: 2}, world[0].Points[1])
	assert.Equal(t, geometry.Point2D{X: 10, Y: 20}, world[0].Points[2])
	assert.True(t, world[0].Closed)
	assert.Equal(t, "OUTLINE", world[0].Layer)

	// Input remains in pixel space.
	assert.Equal(t, geometry.Point2D{X: 4, Y: 8}, pixel[0].Points[0])
}

func TestApplyRelativeError(t *testing.T) {
	// Accumulated floating error across a scale round trip stays
	// below 1e-6 relative.
	ref := Reference{
		P0:       geometry.Point2D{X: 12.5, Y: 7.25},
		P1:       geometry.Point2D{X: 919.75, Y: 613.5},
		LengthMM: 137.9,
	}
	tr, err := Calibrate(ref)
	require.NoError(t, err)

	refSpanMM := tr.ApplyPoint(ref.P0).Distance(tr.ApplyPoint(ref.P1))
	relErr := math.Abs(refSpanMM-ref.LengthMM) / ref.LengthMM
	assert.Less(t, relErr, 1e-6)
}

func TestWithAnchor(t *testing.T) {
	tr, err := FromMMPerPixel(2)
	require.NoError(t, err)

	anchored := tr.WithAnchor(geometry.Point2D{X: 10, Y: 10}, geometry.Point2D{})
	got := anchored.ApplyPoint(geometry.Point2D{X: 10, Y: 10})
	assert.InDelta(t, 0, got.X, 1e-12)
	assert.InDelta(t, 0, got.Y, 1e-12)

	got = anchored.ApplyPoint(geometry.Point2D{X: 11, Y: 10})
	assert.InDelta(t, 2, got.X, 1e-12)
}

func TestCalibrateFromPairs(t *testing.T) {
	pixel := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	world := make([]geometry.Point2D, len(pixel))
	for i, p := range pixel {
		world[i] = p.Scale(0.2).Add(geometry.Point2D{X: 5, Y: 5})
	}

	tr, err := CalibrateFromPairs(pixel, world, 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, tr.MMPerPixel, 1e-9)

	for i := range pixel {
		got := tr.ApplyPoint(pixel[i])
		assert.InDelta(t, world[i].X, got.X, 1e-9)
		assert.InDelta(t, world[i].Y, got.Y, 1e-9)
	}
}

func TestCalibrateFromPairsRejectsInconsistent(t *testing.T) {
	pixel := []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	world := []geometry.Point2D{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 90, Y: 35}} // not a uniform scale

	_, err := CalibrateFromPairs(pixel, world, 0.5)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Error(), "residual")
}
