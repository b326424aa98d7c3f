package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dyntext"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dyntext",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dyntext version %s\n", strings.TrimSpace(dyntext.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
