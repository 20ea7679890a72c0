package cmd

import (
	"github.com/spf13/cobra"

	"cuefm/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the CueFM HTTP server",
	Long:  `Start the CueFM server: the cue catalog API, timeline and preset documents, the remote command relay and the web console.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
