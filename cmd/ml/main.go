// Package main provides the ml CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string
	logJSON     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ml",
	Short: "Deduplicating catalog for a PDF library",
	Long: `ml keeps one catalog row per real-world work across a PDF library.

It scans PDFs, enriches them from Crossref and Semantic Scholar, merges
every candidate into a master table by DOI, ISBN, fingerprint or file
hash, and writes exports and quality reports. All commands output JSON by
default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to log_level from config")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	rootCmd.Version = Version
}

// mustFindRepository resolves the library root or exits with a config error.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	root, err := config.ResolveRoot(cwd)
	if err != nil {
		if !humanOutput {
			exitWithError(ExitConfigError, "%v", err)
		}
		exitWithError(ExitConfigError, "%s", config.HelpfulConfigMessage())
	}
	return root
}

// mustLoadOptions loads .env files and the effective options of root.
func mustLoadOptions(root string) *config.Options {
	if err := config.LoadEnv(root); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	opts, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := opts.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return opts
}

// mustLogger builds the process logger from flags, falling back to the
// configured level.
func mustLogger(opts *config.Options) *zap.Logger {
	level := logLevel
	if level == "" && opts != nil {
		level = opts.LogLevel
	}
	log, err := logging.New(level, logJSON)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return log
}
