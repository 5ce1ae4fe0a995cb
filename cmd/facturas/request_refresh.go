package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"facturas/internal/amqp"
	"facturas/internal/log"
)

func requestRefreshCmd() *cobra.Command {
	var (
		simulated bool
		reason    string
	)

	cmd := &cobra.Command{
		Use:   "request-refresh",
		Short: "Ask the worker to refresh the cache",
		Long: `Publish a refresh request on the AMQP queue consumed by facturas-worker.
The command returns as soon as the broker has accepted the message.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if appConfig.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is not configured")
			}

			client, err := amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue, log.FromContext(ctx))
			if err != nil {
				return fmt.Errorf("failed to connect to AMQP: %w", err)
			}
			defer client.Close()

			if err := client.PublishRefreshRequest(ctx, simulated, reason); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Refresh requested")
			return nil
		},
	}

	cmd.Flags().BoolVar(&simulated, "simulated", false, "refresh from the simulated backend")
	cmd.Flags().StringVar(&reason, "reason", "cli", "reason recorded with the request")
	return cmd
}
