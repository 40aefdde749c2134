package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/report"
	"github.com/matsen/motherload/internal/scan"
)

var ingestCollection string

func init() {
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "", "Collection label for the new row")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Add a single PDF to the catalog",
	Long: `Run one PDF through extraction, provider lookups and the merge engine.

The row is stamped with source "manual". The master table and its exports
are rewritten; reports are left to the next scan or 'ml report'.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	opts := mustLoadOptions(root)
	log := mustLogger(opts)
	defer log.Sync()

	path, err := filepath.Abs(args[0])
	if err != nil {
		exitWithError(ExitError, "resolving %s: %v", args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	detail, err := scan.Open(opts, log).Ingest(ctx, path, ingestCollection)
	if err != nil {
		if scan.IsCatalogError(err) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "ingest: %v", err)
	}

	if humanOutput {
		if detail.Action == report.ActionError {
			outputHuman("Failed %s: %v\n", path, detail.Errors)
		} else {
			outputHuman("%s %s (%s)\n", detail.Action, detail.PrimaryID, path)
			for _, w := range detail.Warnings {
				outputHuman("  warning %s\n", w)
			}
		}
	} else {
		outputJSON(detail)
	}

	if detail.Action == report.ActionError {
		os.Exit(ExitDataError)
	}
	return nil
}
