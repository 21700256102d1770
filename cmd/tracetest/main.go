// Command tracetest runs preprocessing and vectorization on a sketch
// image and prints the traced paths, for tuning thresholds without
// producing a drawing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/161sam/sketch2cad/internal/config"
	"github.com/161sam/sketch2cad/internal/preprocess"
	"github.com/161sam/sketch2cad/internal/raster"
	"github.com/161sam/sketch2cad/internal/vectorize"
)

func main() {
	imagePath := flag.String("image", "", "Path to sketch image (PNG, JPEG, TIFF, or BMP)")
	fixed := flag.Int("fixed-threshold", 0, "Use a fixed threshold instead of adaptive (1-255)")
	centerline := flag.Bool("centerline", false, "Trace stroke centerlines instead of outlines")
	tolerance := flag.Float64("tolerance", 0, "Simplification tolerance in pixels")
	dump := flag.String("dump", "", "Write the binary mask to this PNG path")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: tracetest -image <path> [-fixed-threshold n] [-centerline] [-tolerance px] [-dump mask.png]")
		os.Exit(1)
	}

	opts := config.Default()
	if *fixed > 0 && *fixed < 256 {
		opts.Preprocess.AdaptiveThreshold = false
		opts.Preprocess.FixedThreshold = uint8(*fixed)
	}
	if *centerline {
		opts.Vectorize.Centerline = true
	}
	if *tolerance > 0 {
		opts.Vectorize.SimplifyTolerance = *tolerance
	}

	gray, err := raster.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer gray.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", gray.Cols(), gray.Rows())

	mask, err := preprocess.Clean(gray, opts.Preprocess)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Preprocess failed: %v\n", err)
		os.Exit(1)
	}
	defer mask.Close()
	fmt.Printf("Foreground: %d px\n", mask.ForegroundCount())

	if *dump != "" {
		if err := raster.DumpPNG(mask, *dump); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write mask: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Mask written to %s\n", *dump)
	}

	res, err := vectorize.Vectorize(mask, opts.Vectorize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Vectorize failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nTraced %d paths (%d dropped):\n", len(res.Paths), res.Dropped)
	for i, p := range res.Paths {
		b := p.Bounds()
		kind := "open"
		if p.Closed {
			kind = "closed"
		}
		fmt.Printf("  %2d: %-7s layer=%-7s points=%-4d bbox=(%.0f,%.0f %.0fx%.0f)\n",
			i, kind, p.Layer, len(p.Points), b.X, b.Y, b.Width, b.Height)
	}
}
