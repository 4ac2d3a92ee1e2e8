package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/anchor/internal/server"
	"github.com/dmitrijs2005/anchor/internal/server/config"
)

// Flags are parsed by the config package from os.Args, so cobra's own flag
// parsing is disabled on every command.
var rootCmd = &cobra.Command{
	Use:                "anchor-server",
	Short:              "Anchor backend: REST API for the app and gRPC sync for the terminal client",
	DisableFlagParsing: true,
	SilenceUsage:       true,
	RunE:               serve,
}

var serveCmd = &cobra.Command{
	Use:                "serve",
	Short:              "Apply migrations and run the HTTP and gRPC servers (default)",
	DisableFlagParsing: true,
	RunE:               serve,
}

var migrateCmd = &cobra.Command{
	Use:                "migrate",
	Short:              "Apply database migrations and exit",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Migrate(cmd.Context())
	},
}

func newApp(ctx context.Context) (*server.App, error) {
	return server.NewApp(ctx, config.LoadConfig())
}

func serve(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Run(cmd.Context())
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
