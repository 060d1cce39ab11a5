package cmd

import (
	"fmt"
	"log"
	"os"

	"TubeFM/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tubefm",
	Short: "TubeFM converts media search results into downloadable MP3 files.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting TubeFM server...")
		// server.Start handles its own port and logging for startup.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
