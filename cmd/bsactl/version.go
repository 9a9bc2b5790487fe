package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bsakit/bindings"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		major, minor, patch := bindings.LibraryVersion()
		fmt.Printf("bsactl %s\n", version)
		fmt.Printf("  library: %d.%d.%d\n", major, minor, patch)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
