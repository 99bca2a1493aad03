package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/bookhaven-backend/internal/app"
)

func main() {
	var flags app.Flags

	rootCmd := &cobra.Command{
		Use:           "bookhaven",
		Short:         "Book Haven storefront backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), flags)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.Port, "port", "", "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&flags.LogMode, "log-mode", "", "development|production (overrides LOG_MODE)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), flags)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(flags)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "bookhaven: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, flags app.Flags) error {
	a, err := app.New(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		a.Log.Error("server stopped", "error", err)
		return err
	}
	a.Log.Info("server stopped")
	return nil
}
