package cmd

import (
	"context"
	"time"

	"servermonitor/internal/client"

	"github.com/spf13/cobra"
)

var (
	clientServerAddr string
	clientRetries    int
	clientTimeout    time.Duration
)

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&clientServerAddr, "server", "s", "http://localhost:8000", "Server base URL")
	cmd.Flags().IntVar(&clientRetries, "retries", 3, "Retries for read requests")
	cmd.Flags().DurationVar(&clientTimeout, "timeout", 30*time.Second, "Per-request timeout")
}

func newClient() *client.Client {
	return client.New(clientServerAddr, clientRetries, clientTimeout)
}

func commandContext() (context.Context, context.CancelFunc) {
	// metrics fan out to three provider calls, leave room for retries
	return context.WithTimeout(context.Background(), clientTimeout*time.Duration(clientRetries+1))
}
