package preprocess

import (
	"image"

	"gocv.io/x/gocv"
)

// Skeletonize reduces a binary mask to single-pixel-wide strokes using
// iterative morphological thinning (erode, open, subtract). Consistent
// stroke width improves centerline trace fidelity downstream.
func Skeletonize(mask gocv.Mat) gocv.Mat {
	skeleton := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	temp := mask.Clone()
	defer temp.Close()

	eroded := gocv.NewMat()
	defer eroded.Close()

	element := gocv.GetStructuringElement(gocv.MorphCross, image.Pt(3, 3))
	defer element.Close()

	for {
		gocv.Erode(temp, &eroded, element)

		dilated := gocv.NewMat()
		gocv.Dilate(eroded, &dilated, element)

		// temp minus its opening leaves this iteration's skeleton
		// layer.
		diff := gocv.NewMat()
		gocv.Subtract(temp, dilated, &diff)
		dilated.Close()

		gocv.BitwiseOr(skeleton, diff, &skeleton)
		diff.Close()

		eroded.CopyTo(&temp)

		if gocv.CountNonZero(eroded) == 0 {
			break
		}
	}

	return skeleton
}
