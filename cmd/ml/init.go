package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new library",
	Long: `Initialize a library in dir (default: current directory).

Creates:
  .motherload/
  ├── config.yml      # Default options
  └── cache/          # Enrichment cache and query mirror
  bibliotheque/       # Master table and exports
  collections/        # Default pdf_root
  inbox/              # Watched by 'ml watch'
  reports/
  scan_runs/

Running init on an existing library keeps its config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root, err := filepath.Abs(config.ExpandPath(dir))
	if err != nil {
		exitWithError(ExitError, "resolving %s: %v", dir, err)
	}

	existed := config.IsRepository(root)
	if _, err := config.Init(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	status := "created"
	if existed {
		status = "exists"
	}
	if humanOutput {
		if existed {
			outputHuman("Library already initialized at %s\n", root)
		} else {
			outputHuman("Initialized library at %s\n", root)
		}
	} else {
		outputJSON(StatusResponse{Status: status, Path: root})
	}
	return nil
}
