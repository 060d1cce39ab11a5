package cmd

import (
	"TubeFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TubeFM HTTP server",
	Long:  `Start the TubeFM HTTP server, exposing the search and convert API plus the web UI.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
