// Package config defines the pipeline option set and its defaults.
// Options are passed explicitly to each stage; there is no ambient
// configuration state.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Options configures the full sketch-to-CAD pipeline. The zero value
// is not usable; start from Default and override.
type Options struct {
	// Preprocess controls raster cleanup.
	Preprocess PreprocessOptions `toml:"preprocess"`

	// Vectorize controls contour tracing and simplification.
	Vectorize VectorizeOptions `toml:"vectorize"`

	// DebugDump enables writing intermediate masks as PNGs.
	DebugDump bool `toml:"debug_dump"`

	// DebugDir is where debug artifacts are written.
	DebugDir string `toml:"debug_dir"`
}

// PreprocessOptions configures binary mask extraction.
type PreprocessOptions struct {
	// BlurKernel is the Gaussian blur kernel size. Forced odd, 0
	// disables blurring.
	BlurKernel int `toml:"blur_kernel"`

	// AdaptiveThreshold selects adaptive Gaussian thresholding.
	// When false a fixed global threshold is used, which is only
	// adequate for evenly lit scans.
	AdaptiveThreshold bool `toml:"adaptive_threshold"`

	// AdaptiveBlock is the adaptive threshold neighborhood size.
	// Forced odd and at least 3.
	AdaptiveBlock int `toml:"adaptive_block"`

	// AdaptiveC is the constant subtracted from the neighborhood mean.
	AdaptiveC float64 `toml:"adaptive_c"`

	// FixedThreshold is the global threshold used when
	// AdaptiveThreshold is false. Intensities below it become ink.
	FixedThreshold uint8 `toml:"fixed_threshold"`

	// MorphKernel is the closing kernel size; values below 2 disable
	// morphological closing.
	MorphKernel int `toml:"morph_kernel"`

	// MorphIterations is the number of closing passes.
	MorphIterations int `toml:"morph_iterations"`

	// NoiseFloorPx drops foreground blobs whose contour area is below
	// this many pixels. Too aggressive collapses thin strokes, too lax
	// leaves speckle that gets traced as spurious micro-paths.
	NoiseFloorPx int `toml:"noise_floor_px"`

	// Thin reduces strokes to single-pixel-wide skeletons after
	// thresholding. Implied by centerline tracing.
	Thin bool `toml:"thin"`
}

// VectorizeOptions configures path extraction.
type VectorizeOptions struct {
	// SimplifyTolerance is the maximum deviation, in pixels, allowed
	// when reducing a traced contour to fewer points.
	SimplifyTolerance float64 `toml:"simplify_tolerance"`

	// Centerline traces stroke centerlines instead of region outlines.
	Centerline bool `toml:"centerline"`

	// HolesFloorPx drops hole contours below this area. Holes carry a
	// higher floor than outlines since small interior specks are
	// usually thresholding artifacts.
	HolesFloorPx int `toml:"holes_floor_px"`

	// ClosedEpsilon is the pixel distance under which a path's start
	// and end are considered coincident, marking the path closed.
	ClosedEpsilon float64 `toml:"closed_epsilon"`
}

// Default returns the documented default options.
func Default() Options {
	return Options{
		Preprocess: PreprocessOptions{
			BlurKernel:        5,
			AdaptiveThreshold: true,
			AdaptiveBlock:     41,
			AdaptiveC:         7,
			FixedThreshold:    128,
			MorphKernel:       3,
			MorphIterations:   1,
			NoiseFloorPx:      50,
		},
		Vectorize: VectorizeOptions{
			SimplifyTolerance: 2.0,
			HolesFloorPx:      80,
			ClosedEpsilon:     1.5,
		},
		DebugDir: "_debug",
	}
}

// LoadFile reads options from a TOML file, applying the file's values
// on top of the defaults.
func LoadFile(path string) (Options, error) {
	opts := Default()
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return opts, nil
}

// LoadFileIfExists behaves like LoadFile but returns defaults when the
// file is absent.
func LoadFileIfExists(path string) (Options, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFile(path)
}

// Validate rejects option combinations no stage can honor.
func (o Options) Validate() error {
	if o.Preprocess.AdaptiveBlock < 3 && o.Preprocess.AdaptiveThreshold {
		return fmt.Errorf("adaptive_block must be >= 3, got %d", o.Preprocess.AdaptiveBlock)
	}
	if o.Preprocess.NoiseFloorPx < 0 {
		return fmt.Errorf("noise_floor_px must be >= 0, got %d", o.Preprocess.NoiseFloorPx)
	}
	if o.Vectorize.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify_tolerance must be >= 0, got %g", o.Vectorize.SimplifyTolerance)
	}
	if o.Vectorize.ClosedEpsilon < 0 {
		return fmt.Errorf("closed_epsilon must be >= 0, got %g", o.Vectorize.ClosedEpsilon)
	}
	return nil
}
