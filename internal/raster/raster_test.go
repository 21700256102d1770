package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGrayscaleConversion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(2, 1, color.Black)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	m, err := Decode(&buf)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Cols())
	assert.EqualValues(t, 255, m.GetUCharAt(0, 0))
	assert.EqualValues(t, 0, m.GetUCharAt(1, 2))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestMaskInvariant(t *testing.T) {
	m := NewMask(8, 8)
	defer m.Close()

	require.NoError(t, m.Validate())
	assert.Zero(t, m.ForegroundCount())

	m.Set(3, 4)
	assert.True(t, m.At(3, 4))
	assert.False(t, m.At(4, 3))
	assert.Equal(t, 1, m.ForegroundCount())
	require.NoError(t, m.Validate())

	// An intermediate gray level violates the invariant.
	m.Mat.SetUCharAt(0, 0, 128)
	assert.Error(t, m.Validate())
}

func TestMaskCloneIsIndependent(t *testing.T) {
	m := NewMask(4, 4)
	defer m.Close()
	m.Set(1, 1)

	c := m.Clone()
	defer c.Close()
	c.Set(2, 2)

	assert.Equal(t, 1, m.ForegroundCount())
	assert.Equal(t, 2, c.ForegroundCount())
}

func TestDumpPNGRoundTrip(t *testing.T) {
	m := NewMask(5, 5)
	defer m.Close()
	m.Set(2, 2)

	path := filepath.Join(t.TempDir(), "debug", "mask.png")
	require.NoError(t, DumpPNG(m, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.EqualValues(t, 255, gray.GrayAt(2, 2).Y)
	assert.EqualValues(t, 0, gray.GrayAt(0, 0).Y)
}
