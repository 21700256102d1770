package geometry

// Simplify reduces a dense point sequence to fewer points using the
// Douglas-Peucker algorithm. A point is retained only if removing it
// would displace the polyline by more than tolerance from the original
// sequence, so corners sharper than the tolerance survive while
// raster-induced jaggedness is removed.
//
// The implementation works over an indexed keep-mask with an explicit
// span stack instead of recursing on subslices, so no intermediate
// point buffers are allocated. The input slice is not modified.
func Simplify(points []Point2D, tolerance float64) []Point2D {
	if len(points) <= 2 {
		out := make([]Point2D, len(points))
		copy(out, points)
		return out
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true

	type span struct{ first, last int }
	stack := []span{{0, len(points) - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Find the point with maximum distance from the chord.
		dmax := 0.0
		index := s.first
		for i := s.first + 1; i < s.last; i++ {
			d := PerpendicularDistance(points[i], points[s.first], points[s.last])
			if d > dmax {
				dmax = d
				index = i
			}
		}

		if dmax > tolerance {
			keep[index] = true
			stack = append(stack, span{s.first, index}, span{index, s.last})
		}
	}

	var out []Point2D
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

// SimplifyClosed simplifies a closed ring. The ring is split at its
// two mutually most distant vertices so that the Douglas-Peucker chord
// never degenerates to a zero-length line, then both halves are
// simplified independently and rejoined.
func SimplifyClosed(points []Point2D, tolerance float64) []Point2D {
	if len(points) <= 3 {
		out := make([]Point2D, len(points))
		copy(out, points)
		return out
	}

	// Anchor at the first vertex and the vertex farthest from it.
	far := 0
	dmax := 0.0
	for i := 1; i < len(points); i++ {
		d := points[0].Distance(points[i])
		if d > dmax {
			dmax = d
			far = i
		}
	}
	if far == 0 {
		// All vertices coincide.
		return []Point2D{points[0]}
	}

	first := Simplify(points[:far+1], tolerance)

	// The second half runs back to the ring start, so simplify it with
	// the closing edge appended; vertices near the ring start survive
	// unless the closing chord actually covers them.
	back := make([]Point2D, 0, len(points)-far+1)
	back = append(back, points[far:]...)
	back = append(back, points[0])
	second := Simplify(back, tolerance)

	// first ends where second starts and second ends at first's start;
	// both joints are already present, keep only second's interior.
	out := make([]Point2D, 0, len(first)+len(second)-2)
	out = append(out, first...)
	if len(second) > 2 {
		out = append(out, second[1:len(second)-1]...)
	}
	return out
}

// MaxDeviation returns the maximum distance from any point of the
// original sequence to the simplified polyline. Used to verify the
// simplification tolerance bound.
func MaxDeviation(original, simplified []Point2D, closed bool) float64 {
	if len(simplified) == 0 {
		return 0
	}
	segs := len(simplified) - 1
	if closed {
		segs = len(simplified)
	}
	if segs < 1 {
		segs = 0
	}

	var worst float64
	for _, p := range original {
		best := p.Distance(simplified[0])
		for i := 0; i < segs; i++ {
			a := simplified[i]
			b := simplified[(i+1)%len(simplified)]
			if d := PointToSegmentDistance(p, a, b); d < best {
				best = d
			}
		}
		if best > worst {
			worst = best
		}
	}
	return worst
}
