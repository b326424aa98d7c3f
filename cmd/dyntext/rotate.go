package main

import (
	"strings"

	"github.com/aretw0/dyntext"
	"github.com/aretw0/dyntext/internal/cli"
	"github.com/aretw0/dyntext/internal/config"
	"github.com/aretw0/dyntext/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate [text...]",
	Short: "Rotate through the texts of a source",
	Long: `Shows the texts of a rotation source one after another, wrapping around at the
end. Positional arguments replace the texts of the memory source. Runs until
interrupted or until --duration elapses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Rotation.Source = config.SourceMemory
			cfg.Rotation.Texts = args
		}
		duration, _ := cmd.Flags().GetDuration("duration")

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.OutOrStdout(), dyntext.Version)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.RunRotate(ctx, cmd.OutOrStdout(), cli.RotateOptions{
			Config:   cfg,
			Duration: duration,
			Version:  strings.TrimSpace(dyntext.Version),
			Logger:   logger,
		})
		if sig := ctx.Signal(); sig != nil {
			logger.Debug("rotation interrupted", "signal", sig)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(rotateCmd)
	addLabelFlags(rotateCmd)
	addSourceFlags(rotateCmd)
	rotateCmd.Flags().Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	rotateCmd.Flags().Bool("watch", false, "Log changes of the source as they happen")
	rotateCmd.Flags().String("metrics-addr", "", "Serve status, events and metrics on this address")
	rotateCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
