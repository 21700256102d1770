// Package raster provides image loading and conversion between Go
// images and OpenCV matrices, plus the binary mask type produced by
// preprocessing.
package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Load reads an image file (PNG, JPEG, TIFF, or BMP) and returns it as
// an 8-bit grayscale matrix. The caller owns the returned Mat and must
// Close it.
func Load(path string) (gocv.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

// Decode reads an image from r and returns it as an 8-bit grayscale
// matrix.
func Decode(r io.Reader) (gocv.Mat, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return gocv.NewMat(), err
	}
	return ToGrayMat(img), nil
}

// ToGrayMat converts a Go image.Image to an 8-bit single-channel Mat
// using ITU-R BT.601 luminance weights.
func ToGrayMat(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
			mat.SetUCharAt(y, x, uint8(lum))
		}
	}
	return mat
}

// ToImage converts a single-channel Mat back to a Go grayscale image.
func ToImage(m gocv.Mat) *image.Gray {
	h, w := m.Rows(), m.Cols()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: m.GetUCharAt(y, x)})
		}
	}
	return img
}
