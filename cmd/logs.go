package cmd

import (
	"fmt"

	"servermonitor/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs [instance id]",
	Short: "Print the console output of an instance",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		log, err := newClient().Logs(ctx, args[0])
		if err != nil {
			logging.Logger().Fatal("Could not get console output", zap.String("instance_id", args[0]), zap.Error(err))
		}
		fmt.Print(log)
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	addClientFlags(logsCmd)
}
