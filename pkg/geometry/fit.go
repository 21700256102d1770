package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FitAffine computes the least-squares affine transform mapping src
// points onto dst points. At least 3 point pairs are required.
func FitAffine(src, dst []Point2D) (AffineTransform, error) {
	n := len(src)
	if n != len(dst) {
		return AffineTransform{}, fmt.Errorf("point count mismatch: %d vs %d", n, len(dst))
	}
	if n < 3 {
		return AffineTransform{}, fmt.Errorf("need at least 3 points, got %d", n)
	}

	// Overdetermined system: [x', y'] = [a b tx; c d ty] * [x y 1]
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, yp)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return AffineTransform{}, err
	}

	return AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// FitSimilarity computes the least-squares similarity transform
// (uniform scale + rotation + translation) mapping src onto dst.
// Requires at least 2 distinct point pairs. Returns the transform and
// the uniform scale factor.
func FitSimilarity(src, dst []Point2D) (AffineTransform, float64, error) {
	n := len(src)
	if n != len(dst) || n < 2 {
		return AffineTransform{}, 0, fmt.Errorf("need at least 2 point pairs, got %d/%d", n, len(dst))
	}

	sc := Centroid(src)
	dc := Centroid(dst)

	var dotSum, crossSum, srcNorm float64
	for i := range src {
		sx, sy := src[i].X-sc.X, src[i].Y-sc.Y
		dx, dy := dst[i].X-dc.X, dst[i].Y-dc.Y
		dotSum += sx*dx + sy*dy
		crossSum += sx*dy - sy*dx
		srcNorm += sx*sx + sy*sy
	}
	if srcNorm == 0 {
		return AffineTransform{}, 0, fmt.Errorf("source points are coincident")
	}

	scale := math.Hypot(dotSum, crossSum) / srcNorm
	if scale == 0 {
		return AffineTransform{}, 0, fmt.Errorf("destination points are coincident")
	}

	theta := math.Atan2(crossSum, dotSum)
	a := scale * math.Cos(theta)
	c := scale * math.Sin(theta)

	tx := dc.X - (a*sc.X - c*sc.Y)
	ty := dc.Y - (c*sc.X + a*sc.Y)

	return AffineTransform{
		A: a, B: -c, TX: tx,
		C: c, D: a, TY: ty,
	}, scale, nil
}

// FitResidual returns the mean distance between transformed src points
// and their dst counterparts.
func FitResidual(src, dst []Point2D, t AffineTransform) float64 {
	if len(src) != len(dst) || len(src) == 0 {
		return math.Inf(1)
	}
	var total float64
	for i := range src {
		total += t.Apply(src[i]).Distance(dst[i])
	}
	return total / float64(len(src))
}
