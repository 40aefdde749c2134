package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/report"
	"github.com/matsen/motherload/internal/scan"
	"github.com/matsen/motherload/internal/watch"
)

var (
	watchDir      string
	watchDebounce time.Duration
)

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Directory to watch (default: the library inbox)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a file is ingested")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest PDFs as they land in a directory",
	Long: `Watch a directory tree and ingest each PDF once it stops changing.

Files are ingested one at a time with source "manual"; the collection is
derived from the path below the watched directory the same way scan does.
Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	opts := mustLoadOptions(root)
	log := mustLogger(opts)
	defer log.Sync()

	dir := watchDir
	if dir == "" {
		dir = config.InboxPath(root)
	}
	dir = config.ExpandPath(dir)
	if err := config.ValidateDir(dir); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := scan.Open(opts, log)
	ingest := func(ctx context.Context, path string) error {
		detail, err := runner.Ingest(ctx, path, scan.Collection(dir, path))
		if err != nil {
			return err
		}
		if humanOutput {
			outputHuman("%s %s\n", detail.Action, path)
		} else {
			outputJSONCompact(detail)
		}
		if detail.Action == report.ActionError {
			log.Warn("ingest rejected file", zap.String("path", path), zap.Strings("errors", detail.Errors))
		}
		return nil
	}

	w := watch.New(dir, ingest, log, watch.WithDebounce(watchDebounce))
	if err := w.Run(ctx); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}
