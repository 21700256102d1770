// Package preprocess turns a raw grayscale sketch image into a clean
// binary ink mask: blur, threshold, close, and noise-floor filtering.
package preprocess

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/161sam/sketch2cad/internal/config"
	"github.com/161sam/sketch2cad/internal/raster"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Error reports an input image that cannot produce a usable mask.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "preprocess: " + e.Reason
}

// Clean converts a grayscale image into a binary ink mask. The input
// Mat is not modified; the returned mask is owned by the caller.
//
// Illumination differences across a photographed sketch are absorbed
// by blurring and adaptive thresholding against the local
// neighborhood, so a shadowed corner thresholds the same as a bright
// center. Fixed thresholding remains available for evenly lit scans.
func Clean(gray gocv.Mat, opts config.PreprocessOptions) (raster.Mask, error) {
	if gray.Empty() {
		return raster.Mask{}, &Error{Reason: "empty input image"}
	}
	if gray.Cols() < 2 || gray.Rows() < 2 {
		return raster.Mask{}, &Error{
			Reason: fmt.Sprintf("degenerate dimensions %dx%d", gray.Cols(), gray.Rows()),
		}
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if k := oddAtLeast(opts.BlurKernel, 0); k >= 3 {
		gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	} else {
		gray.CopyTo(&blurred)
	}

	// Ink is dark on a light substrate; inverted thresholding makes
	// ink the foreground (255).
	binary := gocv.NewMat()
	if opts.AdaptiveThreshold {
		block := oddAtLeast(opts.AdaptiveBlock, 3)
		gocv.AdaptiveThreshold(blurred, &binary, 255,
			gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv,
			block, float32(opts.AdaptiveC))
	} else {
		gocv.Threshold(blurred, &binary, float32(opts.FixedThreshold), 255,
			gocv.ThresholdBinaryInv)
	}

	if opts.MorphKernel > 1 && opts.MorphIterations > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphEllipse,
			image.Pt(opts.MorphKernel, opts.MorphKernel))
		for i := 0; i < opts.MorphIterations; i++ {
			gocv.MorphologyEx(binary, &binary, gocv.MorphClose, kernel)
		}
		kernel.Close()
	}

	if opts.NoiseFloorPx > 0 {
		filtered := removeSpecks(binary, opts.NoiseFloorPx)
		binary.Close()
		binary = filtered
	}

	if opts.Thin {
		thinned := Skeletonize(binary)
		binary.Close()
		binary = thinned
	}

	mask := raster.Mask{Mat: binary}
	if mask.ForegroundCount() == 0 {
		mask.Close()
		return raster.Mask{}, &Error{Reason: "no foreground pixels after thresholding"}
	}
	return mask, nil
}

// removeSpecks redraws only the contours whose area reaches the noise
// floor, discarding isolated speckles without eroding kept strokes.
func removeSpecks(binary gocv.Mat, floorPx int) gocv.Mat {
	contours := gocv.FindContours(binary, gocv.RetrievalCComp, gocv.ChainApproxSimple)
	defer contours.Close()

	cleaned := gocv.NewMatWithSize(binary.Rows(), binary.Cols(), gocv.MatTypeCV8U)
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		// A single pixel has zero contour area; treat the floor as a
		// minimum pixel count by comparing against area+1.
		if area+1 >= float64(floorPx) {
			gocv.DrawContours(&cleaned, contours, i, white, -1)
		}
	}

	// Filled redraw loses interior holes; restore them by masking the
	// redraw with the original binary image.
	restored := gocv.NewMat()
	gocv.BitwiseAnd(cleaned, binary, &restored)
	cleaned.Close()
	return restored
}

func oddAtLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	if v%2 == 0 {
		return v + 1
	}
	return v
}
