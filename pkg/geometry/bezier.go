package geometry

// FlattenCubic approximates a cubic Bézier curve with a polyline whose
// maximum deviation from the true curve is at most tolerance. The
// returned slice starts at p0 and ends at p3.
//
// Subdivision is adaptive: a span is emitted as a straight segment once
// both control points lie within tolerance of the chord, which bounds
// the curve's distance from the chord by the convex hull property.
func FlattenCubic(p0, c1, c2, p3 Point2D, tolerance float64) []Point2D {
	out := []Point2D{p0}
	flattenCubicInto(&out, p0, c1, c2, p3, tolerance, 0)
	return out
}

const maxSubdivDepth = 24

func flattenCubicInto(out *[]Point2D, p0, c1, c2, p3 Point2D, tolerance float64, depth int) {
	if depth >= maxSubdivDepth || cubicFlatEnough(p0, c1, c2, p3, tolerance) {
		*out = append(*out, p3)
		return
	}

	// de Casteljau split at t=0.5
	ab := p0.Lerp(c1, 0.5)
	bc := c1.Lerp(c2, 0.5)
	cd := c2.Lerp(p3, 0.5)
	abc := ab.Lerp(bc, 0.5)
	bcd := bc.Lerp(cd, 0.5)
	mid := abc.Lerp(bcd, 0.5)

	flattenCubicInto(out, p0, ab, abc, mid, tolerance, depth+1)
	flattenCubicInto(out, mid, bcd, cd, p3, tolerance, depth+1)
}

func cubicFlatEnough(p0, c1, c2, p3 Point2D, tolerance float64) bool {
	d1 := PointToSegmentDistance(c1, p0, p3)
	d2 := PointToSegmentDistance(c2, p0, p3)
	return d1 <= tolerance && d2 <= tolerance
}

// FlattenPath expands any curve-hinted segments of a path into straight
// segments within tolerance, returning a pure polyline path. Paths
// without curve hints are returned with their points copied unchanged.
func FlattenPath(p Path, tolerance float64) Path {
	out := Path{Closed: p.Closed, Layer: p.Layer}
	if len(p.Curves) == 0 {
		out.Points = make([]Point2D, len(p.Points))
		copy(out.Points, p.Points)
		return out
	}

	hints := make(map[int]CurveHint, len(p.Curves))
	for _, c := range p.Curves {
		hints[c.Index] = c
	}

	n := len(p.Points)
	segs := n - 1
	if p.Closed {
		segs = n
	}

	out.Points = append(out.Points, p.Points[0])
	for i := 0; i < segs; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		if h, ok := hints[i]; ok {
			flat := FlattenCubic(a, h.C1, h.C2, b, tolerance)
			out.Points = append(out.Points, flat[1:]...)
		} else {
			out.Points = append(out.Points, b)
		}
	}
	if p.Closed && len(out.Points) > 1 {
		// The closing vertex duplicates the start; Closed implies it.
		out.Points = out.Points[:len(out.Points)-1]
	}
	return out
}
