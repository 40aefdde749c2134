package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/catalog"
	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/export"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/storage"
)

var (
	exportOutput   string
	exportComplete bool
	exportAppend   bool
)

func init() {
	for _, c := range []*cobra.Command{exportBibtexCmd, exportJSONCmd} {
		c.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (required)")
		c.Flags().BoolVar(&exportComplete, "complete", false, "Export only the complete catalog")
		c.MarkFlagRequired("output")
	}
	exportBibtexCmd.Flags().BoolVar(&exportAppend, "append", false, "Append only entries missing from the output file (matched by DOI, then citekey)")
	exportCmd.AddCommand(exportBibtexCmd, exportJSONCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog",
}

var exportBibtexCmd = &cobra.Command{
	Use:   "bibtex",
	Short: "Export the catalog as BibTeX",
	Long: `Export the catalog as BibTeX.

Entry types are book, article or misc. Citekeys are Surname_Year, with _2,
_3 and so on for repeats in table order.`,
	Args: cobra.NoArgs,
	RunE: runExportBibtex,
}

var exportJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "Export the catalog as a JSON array of objects",
	Args:  cobra.NoArgs,
	RunE:  runExportJSON,
}

// ExportResponse is the response for export commands.
type ExportResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Entries int    `json:"entries"`
}

// loadExportRecords reads the master table, optionally narrowed to the
// complete catalog.
func loadExportRecords() []reference.Record {
	root := mustFindRepository()
	records, err := storage.ReadCatalog(config.MasterCSVPath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if exportComplete {
		records = catalog.CompleteCatalog(records)
	}
	return records
}

func runExportBibtex(cmd *cobra.Command, args []string) error {
	records := loadExportRecords()

	written := len(records)
	if exportAppend {
		n, err := export.AppendNew(exportOutput, records)
		if err != nil {
			exitWithError(ExitError, "appending to %s: %v", exportOutput, err)
		}
		written = n
	} else if err := export.WriteBibTeX(exportOutput, records); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}

	reportExport(exportOutput, written)
	return nil
}

func runExportJSON(cmd *cobra.Command, args []string) error {
	records := loadExportRecords()
	if err := storage.WriteCatalogJSON(exportOutput, records); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}
	reportExport(exportOutput, len(records))
	return nil
}

func reportExport(path string, n int) {
	if humanOutput {
		outputHuman("Wrote %d entries to %s\n", n, path)
		return
	}
	outputJSON(ExportResponse{Status: "exported", Path: path, Entries: n})
}
