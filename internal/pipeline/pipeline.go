// Package pipeline sequences the sketch-to-CAD stages: preprocess,
// vectorize, calibrate, export. It short-circuits on the first
// failure and tags every error with the stage that produced it, so
// callers can tell a bad photo from a bad reference from a failed
// write.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/161sam/sketch2cad/internal/config"
	"github.com/161sam/sketch2cad/internal/dxf"
	"github.com/161sam/sketch2cad/internal/preprocess"
	"github.com/161sam/sketch2cad/internal/raster"
	"github.com/161sam/sketch2cad/internal/scale"
	"github.com/161sam/sketch2cad/internal/vectorize"
)

// Stage identifies the pipeline stage an error originated from.
type Stage string

const (
	StageLoad       Stage = "load"
	StagePreprocess Stage = "preprocess"
	StageVectorize  Stage = "vectorize"
	StageCalibrate  Stage = "calibrate"
	StageExport     Stage = "export"
)

// Error wraps a stage failure with its origin.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Request describes one pipeline invocation. Either Reference or
// MMPerPixel must be provided; MMPerPixel takes precedence when both
// are set.
type Request struct {
	InputPath  string
	OutputPath string

	Reference  *scale.Reference
	MMPerPixel float64

	Options config.Options
}

// Result is a successful pipeline outcome.
type Result struct {
	Document  *dxf.Document
	Transform scale.Transform
	Report    Report
}

// Runner executes pipeline requests. Runners are stateless apart from
// their logger and safe for concurrent use as long as concurrent
// requests target distinct output paths.
type Runner struct {
	log *charmlog.Logger
}

// New creates a Runner. A nil logger falls back to the default logger.
func New(logger *charmlog.Logger) *Runner {
	if logger == nil {
		logger = charmlog.Default()
	}
	return &Runner{log: logger}
}

// Run executes the full pipeline for one input image. On success the
// DXF has been written to req.OutputPath and a report sidecar sits
// next to it; on failure the report records the failed stage and no
// drawing is written. Failures are deterministic for identical input
// and options, so Run never retries.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	rep := newReport(req)

	res, err := r.run(ctx, req, &rep)
	rep.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		rep.Status = StatusError
		rep.Errors = append(rep.Errors, err.Error())
	} else {
		rep.Status = StatusOK
		res.Report = rep
	}

	if req.OutputPath != "" {
		if werr := rep.WriteFile(reportPath(req.OutputPath)); werr != nil {
			r.log.Warn("report write failed", "path", reportPath(req.OutputPath), "err", werr)
		}
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, req Request, rep *Report) (*Result, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, &Error{Stage: StagePreprocess, Err: err}
	}

	gray, err := raster.Load(req.InputPath)
	if err != nil {
		return nil, &Error{Stage: StageLoad, Err: err}
	}
	defer gray.Close()
	rep.Width, rep.Height = gray.Cols(), gray.Rows()

	if err := ctx.Err(); err != nil {
		return nil, &Error{Stage: StagePreprocess, Err: err}
	}

	stageStart := time.Now()
	mask, err := preprocess.Clean(gray, req.Options.Preprocess)
	if err != nil {
		return nil, &Error{Stage: StagePreprocess, Err: err}
	}
	defer mask.Close()
	r.log.Debug("preprocess complete",
		"foreground_px", mask.ForegroundCount(),
		"duration", time.Since(stageStart))

	if req.Options.DebugDump {
		if derr := dumpDebugMasks(mask, req.Options.DebugDir); derr != nil {
			r.log.Warn("debug dump failed", "dir", req.Options.DebugDir, "err", derr)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &Error{Stage: StageVectorize, Err: err}
	}

	stageStart = time.Now()
	traced, err := vectorize.Vectorize(mask, req.Options.Vectorize)
	if err != nil {
		return nil, &Error{Stage: StageVectorize, Err: err}
	}
	rep.NumPaths = len(traced.Paths)
	rep.DroppedPaths = traced.Dropped
	r.log.Debug("vectorize complete",
		"paths", len(traced.Paths),
		"dropped", traced.Dropped,
		"duration", time.Since(stageStart))
	if traced.Dropped > 0 {
		r.log.Warn("degenerate paths dropped", "count", traced.Dropped)
	}

	if err := ctx.Err(); err != nil {
		return nil, &Error{Stage: StageCalibrate, Err: err}
	}

	transform, err := r.calibrate(req)
	if err != nil {
		return nil, &Error{Stage: StageCalibrate, Err: err}
	}
	rep.MMPerPixel = transform.MMPerPixel
	world := transform.Apply(traced.Paths)

	if err := ctx.Err(); err != nil {
		return nil, &Error{Stage: StageExport, Err: err}
	}

	stageStart = time.Now()
	doc, err := dxf.Export(world, req.Options.Vectorize.SimplifyTolerance)
	if err != nil {
		return nil, &Error{Stage: StageExport, Err: err}
	}
	if req.OutputPath != "" {
		if err := doc.WriteFile(req.OutputPath); err != nil {
			return nil, &Error{Stage: StageExport, Err: err}
		}
	}
	r.log.Debug("export complete",
		"entities", len(doc.Entities),
		"output", req.OutputPath,
		"duration", time.Since(stageStart))

	return &Result{Document: doc, Transform: transform}, nil
}

// dumpDebugMasks writes the cleaned binary mask and its outline/hole
// split as PNGs into dir.
func dumpDebugMasks(mask raster.Mask, dir string) error {
	if err := raster.DumpPNG(mask, filepath.Join(dir, "binary.png")); err != nil {
		return err
	}

	outer, holes := vectorize.DebugMasks(mask)
	defer outer.Close()
	defer holes.Close()

	if err := raster.DumpPNG(outer, filepath.Join(dir, "mask_outer.png")); err != nil {
		return err
	}
	return raster.DumpPNG(holes, filepath.Join(dir, "mask_holes.png"))
}

func (r *Runner) calibrate(req Request) (scale.Transform, error) {
	if req.MMPerPixel > 0 {
		return scale.FromMMPerPixel(req.MMPerPixel)
	}
	if req.Reference == nil {
		return scale.Transform{}, &scale.Error{
			Reason: "missing reference: provide two reference points with a length, or an explicit mm-per-px",
		}
	}
	return scale.Calibrate(*req.Reference)
}
