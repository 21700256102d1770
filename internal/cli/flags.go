package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/161sam/sketch2cad/internal/config"
	"github.com/161sam/sketch2cad/internal/scale"
	"github.com/161sam/sketch2cad/pkg/geometry"
)

// pipelineFlags are the flags shared by run and watch: configuration
// file plus one of the two calibration forms.
type pipelineFlags struct {
	configPath string

	refPoints string
	refMM     float64
	mmPerPx   float64

	centerline bool
	tolerance  float64
	debugDump  bool
	debugDir   string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVar(&f.refPoints, "ref", "", "reference segment in pixel coordinates: x0,y0,x1,y1")
	cmd.Flags().Float64Var(&f.refMM, "ref-mm", 0, "real-world length of the reference segment in mm")
	cmd.Flags().Float64Var(&f.mmPerPx, "mm-per-px", 0, "explicit scale factor, overrides --ref/--ref-mm")
	cmd.Flags().BoolVar(&f.centerline, "centerline", false, "trace stroke centerlines instead of outlines")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", 0, "path simplification tolerance in pixels")
	cmd.Flags().BoolVar(&f.debugDump, "debug-dump", false, "write intermediate stage images")
	cmd.Flags().StringVar(&f.debugDir, "debug-dir", "", "directory for intermediate stage images")
}

// options loads the config file (if any) and applies flag overrides.
func (f *pipelineFlags) options() (config.Options, error) {
	opts, err := config.LoadFileIfExists(f.configPath)
	if err != nil {
		return config.Options{}, err
	}
	if f.centerline {
		opts.Vectorize.Centerline = true
	}
	if f.tolerance > 0 {
		opts.Vectorize.SimplifyTolerance = f.tolerance
	}
	if f.debugDump {
		opts.DebugDump = true
	}
	if f.debugDir != "" {
		opts.DebugDir = f.debugDir
	}
	if err := opts.Validate(); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}

// calibration resolves the calibration flags into either an explicit
// mm-per-px factor or a reference segment.
func (f *pipelineFlags) calibration() (float64, *scale.Reference, error) {
	if f.mmPerPx > 0 {
		return f.mmPerPx, nil, nil
	}
	if f.refPoints == "" {
		return 0, nil, fmt.Errorf("calibration required: pass --mm-per-px, or --ref with --ref-mm")
	}
	if f.refMM <= 0 {
		return 0, nil, fmt.Errorf("--ref requires a positive --ref-mm")
	}
	p0, p1, err := parseRefPoints(f.refPoints)
	if err != nil {
		return 0, nil, err
	}
	return 0, &scale.Reference{P0: p0, P1: p1, LengthMM: f.refMM}, nil
}

func parseRefPoints(s string) (geometry.Point2D, geometry.Point2D, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Point2D{}, geometry.Point2D{}, fmt.Errorf("--ref wants x0,y0,x1,y1, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Point2D{}, geometry.Point2D{}, fmt.Errorf("--ref component %q: %w", p, err)
		}
		vals[i] = v
	}
	return geometry.Point2D{X: vals[0], Y: vals[1]}, geometry.Point2D{X: vals[2], Y: vals[3]}, nil
}
