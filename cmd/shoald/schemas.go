package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pelagos/shoal/config"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas [name]",
	Short: "Print registered schema documents",
	Long: `Print the JSON schema documents the daemon would expose, after
a full declaration and resolution pass.

With no arguments every registered schema is printed. With a name
only that schema is printed.

Examples:
  shoald schemas
  shoald schemas tunable_create`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchemas,
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}

func runSchemas(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("schema error: %w", err)
	}
	schemas := registry.Schemas()

	names := schemas.Names()
	if len(args) == 1 {
		if schemas.Get(args[0]) == nil {
			return fmt.Errorf("schema not registered: %s", args[0])
		}
		names = args[:1]
	}

	docs := make(map[string]any, len(names))
	for _, name := range names {
		docs[name] = schemas.Get(name).ToJSONSchema(nil)
	}

	var out []byte
	if len(names) == 1 {
		out, err = json.MarshalIndent(docs[names[0]], "", "  ")
	} else {
		out, err = json.MarshalIndent(docs, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
