package watch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/161sam/sketch2cad/internal/config"
	"github.com/161sam/sketch2cad/internal/pipeline"
)

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("scan.png"))
	assert.True(t, IsImage("scan.JPG"))
	assert.True(t, IsImage("/in/deep/scan.tiff"))
	assert.False(t, IsImage("scan.dxf"))
	assert.False(t, IsImage("scan.png.report.json"))
	assert.False(t, IsImage("scan"))
}

func TestOutputPath(t *testing.T) {
	w := New(nil, pipeline.Request{}, Options{Dir: "/in", OutDir: "/out"}, testLogger())
	assert.Equal(t, filepath.Join("/out", "sketch.dxf"), w.outputPath("/in/sketch.png"))
	assert.Equal(t, filepath.Join("/out", "a.b.dxf"), w.outputPath("/in/a.b.jpeg"))
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Dir: "/in"}
	o.applyDefaults()
	assert.Equal(t, "/in", o.OutDir)
	assert.Equal(t, 3, o.StableChecks)
	assert.Equal(t, 200*time.Millisecond, o.StableInterval)
}

func TestWaitStableGrowingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.png")
	require.NoError(t, os.WriteFile(path, []byte("partial"), 0o644))

	w := New(nil, pipeline.Request{}, Options{
		Dir:            dir,
		StableChecks:   2,
		StableInterval: 10 * time.Millisecond,
	}, testLogger())

	// Grow the file for a while, then stop; waitStable must only
	// return after the size settles.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			time.Sleep(8 * time.Millisecond)
			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return
			}
			f.WriteString("more data")
			f.Close()
		}
	}()

	start := time.Now()
	require.NoError(t, w.waitStable(context.Background(), path))
	<-done
	assert.Greater(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitStableCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.png")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := New(nil, pipeline.Request{}, Options{Dir: dir, StableChecks: 2, StableInterval: 5 * time.Millisecond}, testLogger())

	// Empty files never stabilize, so only cancellation ends the wait.
	err := w.waitStable(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunProcessesExistingAndMovesFailures(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	writeTestSketch(t, filepath.Join(dir, "good.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644))

	opts := config.Default()
	opts.Preprocess.AdaptiveThreshold = false
	base := pipeline.Request{MMPerPixel: 0.5, Options: opts}

	w := New(pipeline.New(testLogger()), base, Options{
		Dir:            dir,
		OutDir:         outDir,
		StableChecks:   2,
		StableInterval: 10 * time.Millisecond,
	}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		// Let the pre-existing files finish, then stop the loop.
		time.Sleep(2 * time.Second)
		cancel()
	}()

	err := w.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))

	_, statErr := os.Stat(filepath.Join(outDir, "good.dxf"))
	assert.NoError(t, statErr)

	_, statErr = os.Stat(filepath.Join(outDir, FailedDirName, "broken.png"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dir, "broken.png"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRunRejectsMissingDir(t *testing.T) {
	w := New(pipeline.New(testLogger()), pipeline.Request{}, Options{
		Dir: filepath.Join(t.TempDir(), "nope"),
	}, testLogger())
	err := w.Run(context.Background())
	require.Error(t, err)
}

func testLogger() *charmlog.Logger {
	logger := charmlog.New(os.Stderr)
	logger.SetLevel(charmlog.FatalLevel)
	return logger
}

func writeTestSketch(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 120, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 120; x++ {
			img.SetGray(x, y, color.Gray{Y: 230})
		}
	}
	for y := 20; y < 80; y++ {
		for x := 20; x < 100; x++ {
			if x < 24 || x >= 96 || y < 24 || y >= 76 {
				img.SetGray(x, y, color.Gray{Y: 15})
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}
