package geometry

// PointInPolygon tests whether p lies inside the polygon using ray
// casting. The polygon is treated as closed; vertices need not repeat
// the first point. Points exactly on an edge may report either side.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			x := pi.X + (p.Y-pi.Y)/(pj.Y-pi.Y)*(pj.X-pi.X)
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// RingContains reports whether inner lies entirely within the closed
// ring outer, judged by inner's vertices. Rings that merely touch do
// not count as contained.
func RingContains(outer, inner []Point2D) bool {
	if len(inner) == 0 {
		return false
	}
	for _, p := range inner {
		if !PointInPolygon(p, outer) {
			return false
		}
	}
	return true
}
