package raster

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// DumpPNG writes a single-channel Mat as a PNG file, creating parent
// directories as needed. Used for debug artifact dumps.
func DumpPNG(m Mask, path string) error {
	if m.Empty() {
		return fmt.Errorf("dump %s: empty mask", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dump %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, ToImage(m.Mat)); err != nil {
		return fmt.Errorf("dump %s: %w", path, err)
	}
	return nil
}
