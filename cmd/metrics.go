package cmd

import (
	"fmt"

	"servermonitor/api"
	"servermonitor/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics [instance id]",
	Short: "Print the last hour of CPU and network metrics",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		m, err := newClient().Metrics(ctx, args[0])
		if err != nil {
			logging.Logger().Fatal("Could not get metrics", zap.String("instance_id", args[0]), zap.Error(err))
		}

		printSeries("CPU utilization", m.CPUUtilization)
		printSeries("Network in", m.NetworkIn)
		printSeries("Network out", m.NetworkOut)
	},
}

func printSeries(title string, points []api.MetricPoint) {
	fmt.Printf("%s:\n", title)
	if len(points) == 0 {
		fmt.Println("  no datapoints")
		return
	}
	for _, p := range points {
		fmt.Printf("  %s  %12.2f %s\n", p.Timestamp, p.Value, p.Unit)
	}
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	addClientFlags(metricsCmd)
}
