package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/refcheck/internal/cache"
	"github.com/matsen/refcheck/internal/config"
)

// CacheStatsResponse is the response for cache stats.
type CacheStatsResponse struct {
	Path    string         `json:"path"`
	Entries map[string]int `json:"entries"`
}

// CachePruneResponse is the response for cache prune.
type CachePruneResponse struct {
	Path    string `json:"path"`
	Removed int64  `json:"removed"`
}

var (
	cachePathFlag  string
	cacheOlderThan time.Duration
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or prune the source response cache",
	Long: `Inspect or prune the SQLite cache of source responses.

The cache file comes from --cache, REFCHECK_CACHE, or cache_path in the
config file.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count cached lookups per source",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cached lookups older than a given age",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cachePathFlag, "cache", "", "SQLite cache file")
	cachePruneCmd.Flags().DurationVar(&cacheOlderThan, "older-than", 30*24*time.Hour, "Remove entries stored longer ago than this")
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCache opens the configured cache, exiting when none is configured.
func openCache() (*cache.DB, string) {
	path := loadConfig().CachePath
	if cachePathFlag != "" {
		path = config.ExpandPath(cachePathFlag)
	}
	if path == "" {
		exitWithError(ExitConfigError, "no cache configured (use --cache, REFCHECK_CACHE or cache_path)")
	}
	db, err := cache.OpenDB(path)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return db, path
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	db, path := openCache()
	defer db.Close()

	counts, err := db.Count(cmd.Context())
	if err != nil {
		return err
	}
	if !humanOutput {
		return outputJSON(CacheStatsResponse{Path: path, Entries: counts})
	}
	outputHuman("%s\n", path)
	for _, name := range []string{"crossref", "semantic_scholar", "google_scholar"} {
		outputHuman("  %-16s %d\n", name, counts[name])
	}
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	db, path := openCache()
	defer db.Close()

	n, err := db.Prune(cmd.Context(), time.Now().Add(-cacheOlderThan))
	if err != nil {
		return err
	}
	if !humanOutput {
		return outputJSON(CachePruneResponse{Path: path, Removed: n})
	}
	outputHuman("Removed %d entries older than %s from %s\n", n, cacheOlderThan, path)
	return nil
}
