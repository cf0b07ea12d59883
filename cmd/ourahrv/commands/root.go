package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ourahrv",
		Short: "Export nightly HRV and resting heart rate from the Oura API",
		Long: `ourahrv fetches sleep sessions from the Oura v2 API and writes one JSON file
per night and metric under DATA_DIR. Configuration comes from the environment
and an optional .env file.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewOrganizeCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewAuthorizeCommand())
	rootCmd.AddCommand(NewExchangeCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
