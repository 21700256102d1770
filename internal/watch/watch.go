// Package watch runs the pipeline as a hotfolder service: images
// dropped into a directory are converted as they arrive, and inputs
// that fail conversion are moved aside so they cannot wedge the
// folder.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/161sam/sketch2cad/internal/pipeline"
)

// FailedDirName is where inputs that fail conversion are moved,
// relative to the output directory.
const FailedDirName = "_failed"

// Options configures the watcher.
type Options struct {
	// Dir is the hotfolder to watch for incoming images.
	Dir string
	// OutDir receives the generated DXF files. Defaults to Dir.
	OutDir string

	// StableChecks and StableInterval control how long a new file
	// must keep a constant size before it is considered fully
	// written. Cameras and network shares deliver files in chunks.
	StableChecks   int
	StableInterval time.Duration
}

func (o *Options) applyDefaults() {
	if o.OutDir == "" {
		o.OutDir = o.Dir
	}
	if o.StableChecks <= 0 {
		o.StableChecks = 3
	}
	if o.StableInterval <= 0 {
		o.StableInterval = 200 * time.Millisecond
	}
}

// Watcher converts images dropped into a hotfolder. Files are
// processed one at a time in arrival order.
type Watcher struct {
	runner *pipeline.Runner
	base   pipeline.Request
	opts   Options
	log    *charmlog.Logger
}

// New creates a Watcher. base supplies the calibration and options
// every conversion uses; its InputPath and OutputPath are filled per
// file.
func New(runner *pipeline.Runner, base pipeline.Request, opts Options, logger *charmlog.Logger) *Watcher {
	if logger == nil {
		logger = charmlog.Default()
	}
	opts.applyDefaults()
	return &Watcher{runner: runner, base: base, opts: opts, log: logger}
}

// Run watches the hotfolder until ctx is cancelled. Images already
// present when Run starts are processed first.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.opts.Dir)
	if err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch dir: %s is not a directory", w.opts.Dir)
	}
	if err := os.MkdirAll(w.opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Dir, err)
	}

	if err := w.processExisting(ctx); err != nil {
		return err
	}

	w.log.Info("watching", "dir", w.opts.Dir, "out", w.opts.OutDir)
	seen := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !IsImage(ev.Name) {
				continue
			}
			// Create followed by Write for the same upload is one
			// job, not two.
			if last, ok := seen[ev.Name]; ok && time.Since(last) < w.settleWindow() {
				continue
			}
			seen[ev.Name] = time.Now()
			w.handle(ctx, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) settleWindow() time.Duration {
	return time.Duration(w.opts.StableChecks+1) * w.opts.StableInterval
}

func (w *Watcher) processExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.opts.Dir, err)
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		w.handle(ctx, filepath.Join(w.opts.Dir, e.Name()))
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, path string) {
	if err := w.waitStable(ctx, path); err != nil {
		w.log.Warn("skipping unstable file", "path", path, "err", err)
		return
	}

	req := w.base
	req.InputPath = path
	req.OutputPath = w.outputPath(path)

	w.log.Info("converting", "input", path, "output", req.OutputPath)
	if _, err := w.runner.Run(ctx, req); err != nil {
		w.log.Error("conversion failed", "input", path, "err", err)
		w.moveToFailed(path)
		return
	}
	w.log.Info("converted", "input", path, "output", req.OutputPath)
}

// waitStable polls the file size until it holds steady for
// StableChecks consecutive checks.
func (w *Watcher) waitStable(ctx context.Context, path string) error {
	var lastSize int64 = -1
	stable := 0
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize && info.Size() > 0 {
			stable++
			if stable >= w.opts.StableChecks {
				return nil
			}
		} else {
			stable = 0
			lastSize = info.Size()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.opts.StableInterval):
		}
	}
}

func (w *Watcher) outputPath(input string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".dxf"
	return filepath.Join(w.opts.OutDir, name)
}

func (w *Watcher) moveToFailed(path string) {
	failedDir := filepath.Join(w.opts.OutDir, FailedDirName)
	if err := os.MkdirAll(failedDir, 0o755); err != nil {
		w.log.Error("create failed dir", "err", err)
		return
	}
	dst := filepath.Join(failedDir, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		w.log.Error("move to failed dir", "path", path, "err", err)
		return
	}
	w.log.Info("moved to failed dir", "path", dst)
}

// IsImage reports whether path has a supported raster extension.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
