package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bsplevel",
	Short: "bsplevel - BSP builder for 2D id Tech 1 style level maps",
	Long: `bsplevel reads a level map (vertices, sectors, lines) and runs the
binary space partition builder over it, producing a BSP tree and the DCEL
mesh of its leaves' convex geometry.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
