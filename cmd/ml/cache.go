package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/motherload/internal/cache"
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the enrichment cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts per lookup kind",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cache snapshot so every lookup runs again",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

// CacheStatsResponse is the response for cache stats.
type CacheStatsResponse struct {
	Path  string         `json:"path"`
	Total int            `json:"total"`
	Kinds map[string]int `json:"kinds"`
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	opts := mustLoadOptions(root)
	path := opts.ResolvedCachePath()

	c := cache.Open(path, zap.NewNop())
	kinds := c.Kinds()
	sort.Strings(kinds)
	resp := CacheStatsResponse{Path: path, Total: c.Len(""), Kinds: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		resp.Kinds[k] = c.Len(k)
	}

	if humanOutput {
		fmt.Printf("%s: %d entries\n", path, resp.Total)
		for _, k := range kinds {
			fmt.Printf("  %-16s %d\n", k, resp.Kinds[k])
		}
	} else {
		outputJSON(resp)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	opts := mustLoadOptions(root)
	path := opts.ResolvedCachePath()

	status := "cleared"
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			exitWithError(ExitError, "removing %s: %v", path, err)
		}
		status = "empty"
	}

	if humanOutput {
		outputHuman("Cache %s (%s)\n", status, path)
	} else {
		outputJSON(StatusResponse{Status: status, Path: path})
	}
	return nil
}
