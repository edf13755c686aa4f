package cmd

import (
	"fmt"

	"servermonitor/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// controlCmd represents the control command
var controlCmd = &cobra.Command{
	Use:       "control [instance id] [start|stop]",
	Short:     "Request a start or stop of an instance",
	Long:      `Send a start or stop request. The command returns once the provider accepted the request; it does not wait for the new state.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"start", "stop"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		result, err := newClient().Control(ctx, args[0], args[1])
		if err != nil {
			logging.Logger().Fatal("Control request failed",
				zap.String("instance_id", args[0]),
				zap.String("action", args[1]),
				zap.Error(err))
		}
		fmt.Println(result.Message)
	},
}

func init() {
	rootCmd.AddCommand(controlCmd)
	addClientFlags(controlCmd)
}
