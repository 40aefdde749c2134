package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/motherload/internal/config"
	"github.com/matsen/motherload/internal/reference"
	"github.com/matsen/motherload/internal/storage"
)

var (
	searchLimit      int
	searchTitle      string
	searchAuthors    []string
	searchType       string
	searchYearFrom   int
	searchYearTo     int
	searchCollection string
	searchIncomplete bool
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return (0 = no limit)")
	searchCmd.Flags().StringVar(&searchTitle, "title", "", "Search title only")
	searchCmd.Flags().StringArrayVar(&searchAuthors, "author", nil, "Author name prefix (repeatable, all must match)")
	searchCmd.Flags().StringVar(&searchType, "type", "", "Document type (article, book, unknown)")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "Minimum year")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "Maximum year")
	searchCmd.Flags().StringVar(&searchCollection, "collection", "", "Collection, including sub-collections")
	searchCmd.Flags().BoolVar(&searchIncomplete, "incomplete", false, "Only rows failing the completeness rules")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Long: `Search the catalog through a SQLite full-text mirror of the master table.

The mirror is rebuilt from the master table on every search.

Examples:
  ml search "phylogenetics"
  ml search --author Matsen --year-from 2015
  ml search --collection physics --incomplete`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustRebuildMirror(root)
	defer db.Close()

	filters := storage.SearchFilters{
		Title:          searchTitle,
		Authors:        searchAuthors,
		Type:           searchType,
		YearFrom:       searchYearFrom,
		YearTo:         searchYearTo,
		Collection:     searchCollection,
		IncompleteOnly: searchIncomplete,
	}
	if len(args) == 1 {
		filters.Keyword = strings.TrimSpace(args[0])
	}

	recs, err := db.SearchWithFilters(filters, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}
	if recs == nil {
		recs = []reference.Record{}
	}

	if humanOutput {
		if len(recs) == 0 {
			fmt.Println("No references found")
		} else {
			fmt.Printf("Found %d references:\n\n", len(recs))
			for i, rec := range recs {
				printRecordSummary(i+1, rec)
			}
		}
	} else {
		outputJSON(storage.RecordsJSON(recs))
	}
	return nil
}

// mustRebuildMirror refreshes the query mirror from the master table.
func mustRebuildMirror(root string) *storage.DB {
	records, err := storage.ReadCatalog(config.MasterCSVPath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	if _, err := db.RebuildFromRecords(records); err != nil {
		db.Close()
		exitWithError(ExitError, "rebuilding database: %v", err)
	}
	return db
}
