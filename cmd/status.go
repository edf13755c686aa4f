package cmd

import (
	"fmt"

	"servermonitor/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List instances and their health",
	Long:  `Retrieve every instance with its state and status checks from a running servermonitor.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		instances, err := newClient().Status(ctx)
		if err != nil {
			logging.Logger().Fatal("Could not get status", zap.Error(err))
		}

		if len(instances) == 0 {
			fmt.Println("No instances found")
			return
		}

		fmt.Printf("%-20s %-24s %-10s %-8s %-14s %-16s\n", "INSTANCE", "NAME", "STATE", "SYSTEM", "INSTANCE CHECK", "ADDRESS")
		for _, inst := range instances {
			address := "N/A"
			if inst.PublicIP != nil {
				address = *inst.PublicIP
			} else if inst.PrivateIP != nil {
				address = *inst.PrivateIP
			}
			fmt.Printf("%-20s %-24s %-10s %-8s %-14s %-16s\n",
				inst.InstanceID, inst.Name, inst.InstanceState, inst.SystemStatus, inst.InstanceStatus, address)
		}
		fmt.Printf("\nLast updated: %s\n", instances[0].LastUpdated)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	addClientFlags(statusCmd)
}
