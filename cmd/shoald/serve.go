package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pelagos/shoal/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the management daemon",
	Long: `Start the shoald daemon.

The daemon will:
  - Load configuration from shoald.yaml (or --config)
  - Open the database
  - Declare and resolve every schema and method (startup aborts on a
    declaration fault)
  - Serve the HTTP API and run periodic alert checks

Environment variables override file configuration:
  SHOAL_SERVER_PORT      - Server port (default: 8080)
  SHOAL_DATABASE_DRIVER  - Database driver: sqlite or memory
  SHOAL_DATABASE_PATH    - Database path (default: shoal.db)
  SHOAL_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  shoald serve
  shoald serve --config /etc/shoal/shoald.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil {
		fmt.Printf("Config file %s not found.\n\n", cfgFile)
		fmt.Println("Create one, for example:")
		fmt.Println("  database:")
		fmt.Println("    driver: sqlite")
		fmt.Println("    path: /var/db/shoal.db")
		return fmt.Errorf("config file not found: %s", cfgFile)
	}

	app, err := bootstrap.New(cfgFile)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Blocks until shutdown
	return app.Run(ctx)
}
