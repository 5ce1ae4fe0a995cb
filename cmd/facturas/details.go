package main

import (
	"github.com/spf13/cobra"
)

func detailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "details",
		Short: "Show the self-consumption installation details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.details.Refresh(ctx)
			if err != nil {
				return err
			}
			return renderDetails(cmd.OutOrStdout(), list)
		},
	}
}
