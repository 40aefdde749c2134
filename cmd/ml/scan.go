package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/report"
	"github.com/matsen/motherload/internal/scan"
)

var (
	scanWorkers  int
	scanPDFRoot  string
	scanOCR      bool
	scanProgress bool
)

func init() {
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Override max_workers")
	scanCmd.Flags().StringVar(&scanPDFRoot, "pdf-root", "", "Override pdf_root")
	scanCmd.Flags().BoolVar(&scanOCR, "ocr", false, "Request OCR for text-less files")
	scanCmd.Flags().BoolVar(&scanProgress, "progress", false, "Print per-file progress to stderr")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the PDF library and update the catalog",
	Long: `Scan every PDF under pdf_root, enrich it and merge it into the master table.

Writes the master table (CSV and JSON), the complete catalog, the four
quality reports, a per-file detail log and a run summary under scan_runs/.
Interrupting with Ctrl-C stops the workers and still writes what was merged.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

// ScanResponse is the response for the scan command.
type ScanResponse struct {
	*report.Summary
	SummaryPath string `json:"summary_path,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	opts := mustLoadOptions(root)
	if scanWorkers > 0 {
		opts.MaxWorkers = scanWorkers
	}
	if scanPDFRoot != "" {
		opts.PDFRoot = scanPDFRoot
	}
	if scanOCR {
		opts.EnableOCR = true
	}
	if err := opts.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid options: %v", err)
	}

	log := mustLogger(opts)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runnerOpts []scan.Option
	if scanProgress {
		runnerOpts = append(runnerOpts, scan.WithProgress(func(p scan.Progress) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.Done, p.Total, p.Path)
		}))
	}

	out, err := scan.Open(opts, log, runnerOpts...).Scan(ctx)
	if err != nil {
		if scan.IsCatalogError(err) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "scan: %v", err)
	}

	s := out.Summary
	if humanOutput {
		outputHuman("Scanned %d/%d PDFs: %d created, %d updated, %d errors, %d warnings\n",
			s.ProcessedPDFs, s.TotalPDFs, s.Created, s.Updated, s.Errors, s.Warnings)
		for _, c := range report.TopCodes(s.ErrorCounts, 3) {
			outputHuman("  error   %-22s %d\n", c.Code, c.Count)
		}
		for _, c := range report.TopCodes(s.WarningCounts, 3) {
			outputHuman("  warning %-22s %d\n", c.Code, c.Count)
		}
		if out.SummaryPath != "" {
			outputHuman("Summary: %s\n", out.SummaryPath)
		}
	} else {
		outputJSON(ScanResponse{Summary: s, SummaryPath: out.SummaryPath})
	}

	if out.Interrupted {
		os.Exit(ExitError)
	}
	return nil
}
