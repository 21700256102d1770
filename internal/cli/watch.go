package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/161sam/sketch2cad/internal/pipeline"
	"github.com/161sam/sketch2cad/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var flags pipelineFlags
	var outDir string
	var stableChecks int
	var stableInterval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a hotfolder and convert images as they arrive",
		Long: `Watch a directory for incoming sketch images and convert each one
to a DXF drawing. Inputs that fail conversion are moved to a _failed
subdirectory of the output directory. The same calibration applies to every image, so the
hotfolder suits a fixed camera rig.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			opts, err := flags.options()
			if err != nil {
				return err
			}
			mmPerPx, ref, err := flags.calibration()
			if err != nil {
				return err
			}

			base := pipeline.Request{
				Reference:  ref,
				MMPerPixel: mmPerPx,
				Options:    opts,
			}
			w := watch.New(pipeline.New(logger), base, watch.Options{
				Dir:            args[0],
				OutDir:         outDir,
				StableChecks:   stableChecks,
				StableInterval: stableInterval,
			}, logger)

			err = w.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				logger.Info("watch stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "output directory for DXF files (default: watched dir)")
	cmd.Flags().IntVar(&stableChecks, "stable-checks", 3, "consecutive equal-size checks before a file counts as complete")
	cmd.Flags().DurationVar(&stableInterval, "stable-interval", 200*time.Millisecond, "delay between file-size checks")
	flags.register(cmd)
	return cmd
}
