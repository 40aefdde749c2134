package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/catalog"
	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/importer"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/report"
	"github.com/matsen/motherload/internal/storage"
)

var importFormat string

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "csv", "Import format: csv or paperpile")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge rows from a CSV or Paperpile export into the catalog",
	Long: `Merge external references into the master table.

Formats:
  csv        Any subset of the master columns, header names case-insensitive
  paperpile  Paperpile JSON export

Rows go through the same identity matching and fill-only merge as scanned
files, tagged with source csv or paperpile.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResponse is the response for the import command.
type ImportResponse struct {
	Format   string   `json:"format"`
	Rows     int      `json:"rows"`
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Matched  int      `json:"matched"`
	Total    int      `json:"total"`
	Skipped  []string `json:"skipped,omitempty"`
	Path     string   `json:"path"`
}

func runImport(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()

	var records []reference.Record
	var skipped []string
	switch importFormat {
	case "csv":
		recs, err := importer.ReadCSVFile(args[0])
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		records = recs
	case "paperpile":
		recs, errs := importer.ReadPaperpileFile(args[0])
		if len(recs) == 0 && len(errs) > 0 {
			exitWithError(ExitDataError, "%v", errs[0])
		}
		for _, e := range errs {
			skipped = append(skipped, e.Error())
		}
		records = recs
	default:
		exitWithError(ExitError, "unknown import format: %s (valid: csv, paperpile)", importFormat)
	}

	counters, total, err := importRecords(root, records, time.Now())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	resp := ImportResponse{
		Format:   importFormat,
		Rows:     len(records),
		Created:  counters.Created,
		Updated:  counters.Updated,
		Matched:  counters.Matched,
		Total:    total,
		Skipped:  skipped,
		Path:     config.MasterCSVPath(root),
	}
	if humanOutput {
		outputHuman("Imported %d rows: %d created, %d updated (%d rows in catalog)\n",
			resp.Rows, resp.Created, resp.Updated, resp.Total)
		for _, s := range skipped {
			outputHuman("  skipped: %s\n", s)
		}
	} else {
		outputJSON(resp)
	}
	return nil
}

// importRecords merges records into the master table of root and rewrites
// the table and its JSON export. It returns the merge counters and the new
// row count.
func importRecords(root string, records []reference.Record, now time.Time) (catalog.Counters, int, error) {
	existing, err := storage.ReadCatalog(config.MasterCSVPath(root))
	if err != nil {
		return catalog.Counters{}, 0, err
	}

	engine := catalog.NewEngine(existing, report.Tag(now))
	engine.SetClock(func() time.Time { return now })
	counters := importer.Apply(engine, records)
	table := engine.Finalize()

	if err := storage.WriteCatalog(config.MasterCSVPath(root), table); err != nil {
		return counters, 0, err
	}
	if err := storage.WriteCatalogJSON(config.MasterJSONPath(root), table); err != nil {
		return counters, 0, fmt.Errorf("writing JSON export: %w", err)
	}
	return counters, len(table), nil
}
