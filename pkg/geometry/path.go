package geometry

import "math"

// CurveHint attaches cubic Bézier control points to one segment of a
// path. The segment from Points[Index] to Points[Index+1] is to be
// interpreted as a cubic curve with control points C1 and C2 instead of
// a straight line. Hints are optional metadata; consumers that cannot
// represent curves flatten the hinted segment within their tolerance.
type CurveHint struct {
	Index int     `json:"index"`
	C1    Point2D `json:"c1"`
	C2    Point2D `json:"c2"`
}

// Path is an ordered sequence of 2D points describing one traced
// contour. Closed paths implicitly connect the last point back to the
// first. Layer carries the drawing layer the path belongs to.
//
// Path itself is coordinate-space agnostic; the pipeline only passes
// the space-tagged PixelPath and WorldPath wrappers between stages.
type Path struct {
	Points []Point2D   `json:"points"`
	Curves []CurveHint `json:"curves,omitempty"`
	Closed bool        `json:"closed"`
	Layer  string      `json:"layer,omitempty"`
}

// PixelPath is a Path whose coordinates are image pixels. Produced by
// the vectorizer, consumed by the scale calibrator.
type PixelPath struct {
	Path
}

// WorldPath is a Path whose coordinates are real-world millimeters.
// Produced by the scale calibrator, consumed by the exporter. The
// distinct type keeps a path from being scaled twice.
type WorldPath struct {
	Path
}

// Length returns the total polyline length of the path, including the
// closing segment for closed paths.
func (p Path) Length() float64 {
	if len(p.Points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i].Distance(p.Points[i-1])
	}
	if p.Closed {
		total += p.Points[0].Distance(p.Points[len(p.Points)-1])
	}
	return total
}

// Bounds returns the axis-aligned bounding box of the path vertices.
func (p Path) Bounds() Rect {
	return BoundingBox(p.Points)
}

// SignedArea returns the signed area enclosed by the path treated as a
// closed polygon (shoelace formula). Positive for counter-clockwise
// winding in a Y-up coordinate system.
func (p Path) SignedArea() float64 {
	n := len(p.Points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Transform returns a copy of the path with every vertex and curve
// control point mapped through t. The input path is not modified.
func (p Path) Transform(t AffineTransform) Path {
	out := Path{
		Points: make([]Point2D, len(p.Points)),
		Closed: p.Closed,
		Layer:  p.Layer,
	}
	for i, pt := range p.Points {
		out.Points[i] = t.Apply(pt)
	}
	if len(p.Curves) > 0 {
		out.Curves = make([]CurveHint, len(p.Curves))
		for i, c := range p.Curves {
			out.Curves[i] = CurveHint{
				Index: c.Index,
				C1:    t.Apply(c.C1),
				C2:    t.Apply(c.C2),
			}
		}
	}
	return out
}

// PerpendicularDistance calculates the perpendicular distance from
// point p to the infinite line through a and b. When a and b coincide
// it degrades to the point distance.
func PerpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}

	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}

// PointToSegmentDistance calculates the minimum distance from point p
// to the line segment a-b.
func PointToSegmentDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Point2D{X: a.X + t*dx, Y: a.Y + t*dy}
	return p.Distance(closest)
}
