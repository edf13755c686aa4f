package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "servermonitor",
	Short: "HTTP monitor for EC2 instances",
	Long: `servermonitor serves instance health, console logs, CloudWatch metrics
and start/stop controls for the EC2 instances of one region over HTTP.

Run "servermonitor server" to start the API, or use the client subcommands
against a running server.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
