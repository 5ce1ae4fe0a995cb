package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"facturas/internal/repository"
	"facturas/internal/sources"
)

func refreshCmd() *cobra.Command {
	var simulated bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the records and update the local cache",
		Long: `Fetch the billing records once from the selected backend and replace the
local cache with them. When the fetch fails the cached records are kept and
reported instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.records.Refresh(ctx, simulated)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Origin == repository.OriginRemote {
				fmt.Fprintf(out, "Refreshed %d facturas from the %s backend\n", len(res.Records), sources.SelectorFor(simulated))
				return nil
			}
			fmt.Fprintf(out, "Backend unavailable (%v); %d cached facturas kept\n", res.FetchErr, len(res.Records))
			return nil
		},
	}

	cmd.Flags().BoolVar(&simulated, "simulated", false, "use the simulated backend")
	return cmd
}
