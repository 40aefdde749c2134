package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/report"
	"github.com/matsen/motherload/internal/scan"
	"github.com/matsen/motherload/internal/storage"
)

var reportLatest bool

func init() {
	reportCmd.Flags().BoolVar(&reportLatest, "latest", false, "Show the most recent run summary instead of regenerating reports")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate the quality reports from the master table",
	Long: `Regenerate the four quality reports from the current master table:

  refs_without_pdf.csv              rows with no pdf_path and no file_hash
  refs_incomplete.csv               rows failing the completeness rules
  pdfs_without_ref.csv              PDFs under pdf_root no row points at
  duplicates_and_replacements.csv   shared primary_ids and replaced rows

With --latest, print the summary of the most recent scan instead.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

// ReportResponse is the response for the report command.
type ReportResponse struct {
	Reports map[string]string `json:"reports"`
	Rows    int               `json:"rows"`
}

func runReport(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()

	if reportLatest {
		latest := report.LoadLatest(config.ScanRunsPath(root))
		if len(latest.Runs) == 0 {
			exitWithError(ExitDataError, "no scan runs recorded yet")
		}
		s, err := report.LoadSummary(latest.Runs[0].Path)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		if humanOutput {
			outputHuman("Run %s (%s): %d/%d PDFs, %d created, %d updated, %d errors, %d warnings\n",
				s.Timestamp, s.RunID, s.ProcessedPDFs, s.TotalPDFs, s.Created, s.Updated, s.Errors, s.Warnings)
		} else {
			outputJSON(s)
		}
		return nil
	}

	opts := mustLoadOptions(root)
	records, err := storage.ReadCatalog(config.MasterCSVPath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	pdfs, err := scan.FindPDFs(opts.ResolvedPDFRoot())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	paths, err := report.WriteAll(config.ReportsPath(root), records, pdfs)
	if err != nil {
		exitWithError(ExitError, "writing reports: %v", err)
	}

	if humanOutput {
		for _, name := range []string{report.RefsWithoutPDF, report.RefsIncomplete, report.PDFsWithoutRef, report.DuplicatesAndReplacements} {
			outputHuman("%s\n", paths[name])
		}
	} else {
		outputJSON(ReportResponse{Reports: paths, Rows: len(records)})
	}
	return nil
}
