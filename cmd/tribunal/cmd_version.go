package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tribunal version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tribunal %s\n", Version)
	},
}
