package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ntpstep version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ntpstep", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
