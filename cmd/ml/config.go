package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set library configuration values",
	Long: `Get or set values in .motherload/config.yml.

Usage:
  ml config                            # Show all settings
  ml config max-workers                # Get one value
  ml config pdf-root ~/Papers          # Set a value

Keys accept dashes or underscores. Environment variables and the global
config are not written back; this shows and edits the library file only.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()

	cfg, err := config.LoadFile(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if len(args) == 0 {
		values := make(map[string]string, len(config.Keys))
		for _, k := range config.Keys {
			v, _ := cfg.Get(k)
			values[k] = v
		}
		if humanOutput {
			for _, k := range config.Keys {
				fmt.Printf("%-24s %s\n", k+":", values[k])
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := normalizeKey(args[0])
	if !slices.Contains(config.Keys, key) {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if len(args) == 1 {
		v, _ := cfg.Get(key)
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	value := args[1]
	if key == "pdf_root" {
		value = config.ExpandPath(value)
		if err := config.ValidateDir(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
	}
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
