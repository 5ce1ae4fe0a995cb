package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"facturas/internal/cli"
	"facturas/internal/config"
	"facturas/internal/log"
)

var (
	v       = config.NewViper()
	rootCmd = &cobra.Command{
		Use:   "facturas",
		Short: "Billing records with an offline cache",
		Long: `facturas fetches billing records from the live or simulated backend,
keeps the last good batch in a local cache and filters it by status,
issue date and amount.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("data-store", "", "local cache backend (sqlite, memory)")

	_ = v.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("LOG_FORMAT", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("DATA_STORE", rootCmd.PersistentFlags().Lookup("data-store"))

	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(detailsCmd())
	rootCmd.AddCommand(requestRefreshCmd())
	rootCmd.AddCommand(sheetsAuthCmd())
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cli.SetupLogger(cfg, log.ComponentCLI, os.Stderr)

	appConfig = cfg
	cmd.SetContext(log.IntoContext(cmd.Context(), logger))
	return nil
}
