package raster

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Foreground and background intensity levels of a binary mask.
const (
	Ink        uint8 = 255
	Background uint8 = 0
)

// Mask is a binary raster image: every pixel is either Ink (traced
// foreground) or Background. Masks are produced by preprocessing and
// treated as immutable by downstream stages; stages that need a
// modified mask derive a new one.
type Mask struct {
	Mat gocv.Mat
}

// NewMask creates an all-background mask of the given size.
func NewMask(width, height int) Mask {
	return Mask{Mat: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)}
}

// Close releases the underlying matrix.
func (m Mask) Close() {
	m.Mat.Close()
}

// Width returns the mask width in pixels.
func (m Mask) Width() int { return m.Mat.Cols() }

// Height returns the mask height in pixels.
func (m Mask) Height() int { return m.Mat.Rows() }

// Empty reports whether the mask holds no pixel data.
func (m Mask) Empty() bool { return m.Mat.Empty() }

// ForegroundCount returns the number of Ink pixels.
func (m Mask) ForegroundCount() int {
	if m.Mat.Empty() {
		return 0
	}
	return gocv.CountNonZero(m.Mat)
}

// At reports whether the pixel at (x, y) is Ink.
func (m Mask) At(x, y int) bool {
	return m.Mat.GetUCharAt(y, x) != Background
}

// Set marks the pixel at (x, y) as Ink. Only mask construction (tests,
// preprocessing) may call this; downstream stages read only.
func (m Mask) Set(x, y int) {
	m.Mat.SetUCharAt(y, x, Ink)
}

// Clone returns an independent copy of the mask.
func (m Mask) Clone() Mask {
	return Mask{Mat: m.Mat.Clone()}
}

// Validate checks the two-level invariant: every pixel is exactly Ink
// or Background.
func (m Mask) Validate() error {
	if m.Mat.Empty() {
		return fmt.Errorf("mask has no pixel data")
	}
	rows, cols := m.Mat.Rows(), m.Mat.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := m.Mat.GetUCharAt(y, x)
			if v != Ink && v != Background {
				return fmt.Errorf("pixel (%d,%d) has intermediate level %d", x, y, v)
			}
		}
	}
	return nil
}
