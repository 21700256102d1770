package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/161sam/sketch2cad/internal/version"
)

// Execute runs the sketch2cad CLI. The context should carry signal
// cancellation so a long watch session can be interrupted cleanly.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "sketch2cad",
		Short:        "sketch2cad converts photographed hand sketches to DXF drawings",
		Long:         `sketch2cad turns a photographed hand sketch into a millimeter-calibrated DXF drawing: the photo is thresholded to a binary mask, traced to vector paths, scaled with a known reference length, and written as DXF R12.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			logger.Debug("sketch2cad", "version", version.Full())
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("sketch2cad %s\ncommit: %s\nbuilt: %s\n",
		version.Version, version.GitCommit, version.BuildTime))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newWatchCmd())

	return root.ExecuteContext(ctx)
}
