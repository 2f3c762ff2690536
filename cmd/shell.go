package cmd

import (
	"github.com/aleph-zero/abacus/client"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run a local calculator",
	Long:  "Run an interactive calculator in this process; no server is needed",
	Run: func(cmd *cobra.Command, args []string) {
		client.BootstrapShell()
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
