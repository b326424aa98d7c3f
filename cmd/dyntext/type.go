package main

import (
	"github.com/aretw0/dyntext/internal/cli"
	"github.com/aretw0/dyntext/pkg/observability"
	"github.com/spf13/cobra"
)

var typeCmd = &cobra.Command{
	Use:   "type [text...]",
	Short: "Animate texts one after another on a single line",
	Long: `Animates each argument in order. The next text starts once the current one is
fully shown and the hold time has passed. Exits after the last text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		tokens, err := cfg.TokenConfiguration()
		if err != nil {
			return err
		}
		hold, _ := cmd.Flags().GetDuration("hold")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.RunType(ctx, cmd.OutOrStdout(), args, cli.TypeOptions{
			Config: tokens,
			Hold:   hold,
			Logger: logger,
			Hooks:  observability.LogHooks(logger),
		})
		if cli.Interrupted(err) {
			logger.Debug("typing interrupted", "signal", ctx.Signal())
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(typeCmd)
	addLabelFlags(typeCmd)
	typeCmd.Flags().Duration("hold", 0, "Pause after each text but the last")
}
