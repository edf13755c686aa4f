package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"servermonitor/internal/config"
	"servermonitor/internal/logging"
	"servermonitor/internal/monitor"
	"servermonitor/internal/provider"
	"servermonitor/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the monitor HTTP server",
	Long:  `Start the HTTP API. Settings are read from the config file (CONFIG_PATH) and environment.`,
	Run: func(cmd *cobra.Command, args []string) {
		logging.Logger().Info("Starting servermonitor")

		cfg, err := config.Load()
		if err != nil {
			logging.Logger().Fatal("Failed to load configuration", zap.Error(err))
		}

		logging.Logger().Info("Configuration loaded",
			zap.Int("port", cfg.Server.Port),
			zap.String("region", cfg.Provider.Region),
			zap.Duration("call_timeout", cfg.Provider.CallTimeout),
			zap.Bool("static_credentials", cfg.Provider.AccessKeyID != ""),
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		clients, err := provider.NewAWSClients(ctx, cfg.Provider)
		if err != nil {
			logging.Logger().Fatal("Failed to create provider clients", zap.Error(err))
		}

		svc := monitor.NewService(clients.Compute, clients.Metrics,
			monitor.WithCallTimeout(cfg.Provider.CallTimeout))
		defer svc.Close()

		srv := server.NewServer(cfg.Server, svc)
		if err := srv.Start(ctx); err != nil {
			logging.Logger().Fatal("Server failed", zap.Error(err))
		}
		logging.Logger().Info("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
