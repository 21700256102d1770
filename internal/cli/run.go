package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/161sam/sketch2cad/internal/metrics"
	"github.com/161sam/sketch2cad/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	var flags pipelineFlags
	var output string
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Convert one sketch image to a DXF drawing",
		Args:  cobra.ExactArgs(1),
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

			input := args[0]
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".dxf"
			}

			req := pipeline.Request{
				InputPath:  input,
				OutputPath: output,
				Reference:  ref,
				MMPerPixel: mmPerPx,
				Options:    opts,
			}
			res, err := pipeline.New(logger).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			logger.Info("drawing written",
				"output", output,
				"entities", len(res.Document.Entities),
				"mm_per_px", res.Transform.MMPerPixel)

			if showMetrics {
				m := metrics.Compute(res.Document)
				fmt.Fprintln(cmd.OutOrStdout(), m.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output DXF path (default: input with .dxf extension)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print drawing metrics after conversion")
	flags.register(cmd)
	return cmd
}
