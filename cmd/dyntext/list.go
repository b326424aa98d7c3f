package main

import (
	"github.com/aretw0/dyntext/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the texts of a rotation source",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		source, closer, err := cli.OpenSource(cfg.Rotation, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		raw, _ := cmd.Flags().GetBool("raw")
		width, _ := cmd.Flags().GetInt("width")
		return cli.RunList(cmd.Context(), cmd.OutOrStdout(), source, cli.ListOptions{
			Title: "Rotation source (" + cfg.Rotation.Source + ")",
			Width: width,
			Raw:   raw,
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	addSourceFlags(listCmd)
	listCmd.Flags().Bool("raw", false, "Print markdown instead of rendering it")
	listCmd.Flags().Int("width", 80, "Word wrap width")
}
