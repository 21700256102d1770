// Package vectorize traces a binary ink mask into vector paths in
// pixel space. Region outlines (and their holes) or stroke centerlines
// are extracted as contours, simplified with Douglas-Peucker, and
// returned in a deterministic order.
package vectorize

import (
	"image/color"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/161sam/sketch2cad/internal/config"
	"github.com/161sam/sketch2cad/internal/preprocess"
	"github.com/161sam/sketch2cad/internal/raster"
	"github.com/161sam/sketch2cad/pkg/geometry"
)

// Layer names assigned to traced paths.
const (
	LayerOutline = "OUTLINE"
	LayerHoles   = "HOLES"
)

// Error reports a mask with nothing traceable.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "vectorize: " + e.Reason
}

// Result holds the traced paths and the number of degenerate contours
// that were dropped. Drops are warnings, not failures: a degenerate
// contour (fewer than 2 distinct points) cannot become valid geometry,
// but its absence does not invalidate the rest of the drawing.
type Result struct {
	Paths   []geometry.PixelPath
	Dropped int
}

// Vectorize traces the mask into pixel-space vector paths. The mask is
// read-only; repeated runs on an identical mask and options yield an
// identical result, including path order.
func Vectorize(mask raster.Mask, opts config.VectorizeOptions) (Result, error) {
	if mask.Empty() {
		return Result{}, &Error{Reason: "empty mask"}
	}
	if mask.ForegroundCount() == 0 {
		return Result{}, &Error{Reason: "no foreground pixels"}
	}

	var res Result
	if opts.Centerline {
		res = traceCenterlines(mask, opts)
	} else {
		res = traceOutlines(mask, opts)
	}
	if len(res.Paths) == 0 {
		return Result{}, &Error{Reason: "no traceable contours"}
	}

	orderPaths(res.Paths, mask.Width())
	return res, nil
}

// traceOutlines extracts region boundaries using the two-level contour
// hierarchy: top-level contours become OUTLINE paths, their children
// become HOLES paths.
func traceOutlines(mask raster.Mask, opts config.VectorizeOptions) Result {
	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	contours := gocv.FindContoursWithParams(mask.Mat, &hierarchy,
		gocv.RetrievalCComp, gocv.ChainApproxNone)
	defer contours.Close()

	var res Result
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		layer := LayerOutline
		if parentOf(hierarchy, i) != -1 {
			layer = LayerHoles
			if gocv.ContourArea(contour) < float64(opts.HolesFloorPx) {
				continue
			}
		}

		pts := contourPoints(contour)
		simplified := geometry.SimplifyClosed(pts, opts.SimplifyTolerance)
		if countDistinct(simplified) < 2 {
			res.Dropped++
			continue
		}

		res.Paths = append(res.Paths, geometry.PixelPath{Path: geometry.Path{
			Points: simplified,
			Closed: true,
			Layer:  layer,
		}})
	}
	return res
}

// traceCenterlines thins the mask to single-pixel skeletons and traces
// those. A contour of an open stroke runs out and back along the
// skeleton, enclosing almost no area; such contours are folded to one
// side and emitted as open paths. Contours enclosing real area are
// genuine loops and stay closed.
func traceCenterlines(mask raster.Mask, opts config.VectorizeOptions) Result {
	skeleton := preprocess.Skeletonize(mask.Mat)
	defer skeleton.Close()

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	contours := gocv.FindContoursWithParams(skeleton, &hierarchy,
		gocv.RetrievalCComp, gocv.ChainApproxNone)
	defer contours.Close()

	var res Result
	for i := 0; i < contours.Size(); i++ {
		// A closed 1px loop produces an inner hole contour nearly
		// identical to its outer contour; keep only the outer.
		if parentOf(hierarchy, i) != -1 {
			continue
		}
		pts := contourPoints(contours.At(i))
		if len(pts) == 0 {
			res.Dropped++
			continue
		}

		ring := geometry.Path{Points: pts, Closed: true}
		open := math.Abs(ring.SignedArea()) <= ring.Length()

		var path geometry.Path
		if open {
			half := pts[:len(pts)/2+1]
			simplified := geometry.Simplify(half, opts.SimplifyTolerance)
			closed := len(simplified) > 2 &&
				simplified[0].Distance(simplified[len(simplified)-1]) <= opts.ClosedEpsilon
			path = geometry.Path{Points: simplified, Closed: closed, Layer: LayerOutline}
		} else {
			simplified := geometry.SimplifyClosed(pts, opts.SimplifyTolerance)
			path = geometry.Path{Points: simplified, Closed: true, Layer: LayerOutline}
		}

		if countDistinct(path.Points) < 2 {
			res.Dropped++
			continue
		}
		res.Paths = append(res.Paths, geometry.PixelPath{Path: path})
	}

	classifyNestedLoops(res.Paths)
	return res
}

// classifyNestedLoops assigns the HOLES layer to closed loops that lie
// inside another closed loop. Centerline tracing has no contour
// hierarchy to lean on, so nesting is recovered geometrically.
func classifyNestedLoops(paths []geometry.PixelPath) {
	for i := range paths {
		if !paths[i].Closed {
			continue
		}
		for j := range paths {
			if i == j || !paths[j].Closed {
				continue
			}
			if geometry.RingContains(paths[j].Points, paths[i].Points) {
				paths[i].Layer = LayerHoles
				break
			}
		}
	}
}

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// DebugMasks renders the outline/hole split of the mask as two new
// masks: top-level contours filled into outer, their children into
// holes. The caller owns both masks and must Close them.
func DebugMasks(mask raster.Mask) (outer, holes raster.Mask) {
	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	contours := gocv.FindContoursWithParams(mask.Mat, &hierarchy,
		gocv.RetrievalCComp, gocv.ChainApproxNone)
	defer contours.Close()

	outer = raster.NewMask(mask.Width(), mask.Height())
	holes = raster.NewMask(mask.Width(), mask.Height())
	for i := 0; i < contours.Size(); i++ {
		dst := &outer
		if parentOf(hierarchy, i) != -1 {
			dst = &holes
		}
		gocv.DrawContours(&dst.Mat, contours, i, white, -1)
	}
	return outer, holes
}

// orderPaths sorts paths by the raster-scan position of their
// topmost-leftmost vertex so output order is reproducible across runs.
func orderPaths(paths []geometry.PixelPath, width int) {
	key := func(p geometry.PixelPath) float64 {
		best := math.Inf(1)
		for _, pt := range p.Points {
			k := pt.Y*float64(width) + pt.X
			if k < best {
				best = k
			}
		}
		return best
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return key(paths[i]) < key(paths[j])
	})
}

func contourPoints(contour gocv.PointVector) []geometry.Point2D {
	pts := make([]geometry.Point2D, 0, contour.Size())
	for j := 0; j < contour.Size(); j++ {
		p := contour.At(j)
		pts = append(pts, geometry.Point2D{X: float64(p.X), Y: float64(p.Y)})
	}
	return pts
}

func parentOf(hierarchy gocv.Mat, i int) int {
	if hierarchy.Empty() || i >= hierarchy.Cols() {
		return -1
	}
	// Hierarchy entries are [next, prev, firstChild, parent].
	return int(hierarchy.GetVeciAt(0, i)[3])
}

func countDistinct(pts []geometry.Point2D) int {
	n := 0
	for i, p := range pts {
		dup := false
		for _, q := range pts[:i] {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			n++
			if n >= 2 {
				return n // enough to know the path is non-degenerate
			}
		}
	}
	return n
}
