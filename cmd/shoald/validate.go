package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pelagos/shoal/adapters/memory"
	"github.com/pelagos/shoal/adapters/sqlite"
	"github.com/pelagos/shoal/config"
	"github.com/pelagos/shoal/core/method"
	"github.com/pelagos/shoal/core/schema"
	"github.com/pelagos/shoal/domain/tunable"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and schema declarations",
	Long: `Validate the shoald configuration file and the schema engine.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Every declared schema and method resolves (the same pass serve runs
    at startup)
  - Database is writable (optional)

Examples:
  shoald validate
  shoald validate --config /etc/shoal/shoald.yaml`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	// Load and validate config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	// Show config summary
	fmt.Printf("  %s Database: %s (%s)\n", checkMark, cfg.Database.Path, cfg.Database.Driver)
	fmt.Printf("  %s Listen: %s:%d\n", checkMark, cfg.Server.Host, cfg.Server.Port)

	// Run the schema resolution pass without touching the real store.
	registry, err := buildRegistry(cfg)
	if err != nil {
		fmt.Printf("  %s Schemas resolve\n", crossMark)
		return fmt.Errorf("schema error: %w", err)
	}
	fmt.Printf("  %s Schemas resolve (%d schemas, %d methods)\n",
		checkMark, registry.Schemas().Len(), len(registry.List()))

	// Optional: check database
	if validateCheckDatabase && cfg.Database.Driver == "sqlite" {
		if err := checkDatabaseWritable(cfg.Database.Path); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Database writable\n", checkMark)
		}
	}

	fmt.Println()
	fmt.Println("Configuration is valid.")
	return nil
}

// buildRegistry declares every schema and method against a throwaway
// store and resolves, mirroring daemon startup.
func buildRegistry(cfg *config.Config) (*method.Registry, error) {
	schemas := schema.NewSchemas()
	registry := method.NewRegistry(schemas, zerolog.Nop())

	if cfg.Schemas.Dir != "" {
		extra, err := schema.ParseDir(cfg.Schemas.Dir)
		if err != nil {
			return nil, err
		}
		for _, s := range extra {
			if err := schemas.Add(s); err != nil {
				return nil, err
			}
		}
	}

	svc := tunable.NewService(memory.NewTunableStore(), zerolog.Nop())
	if err := svc.RegisterMethods(registry); err != nil {
		return nil, err
	}
	if err := registry.Resolve(); err != nil {
		return nil, err
	}
	return registry, nil
}

func checkDatabaseWritable(path string) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Bootstrap()
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
