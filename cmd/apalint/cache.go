package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/apalint/internal/config"
	"github.com/matsen/apalint/internal/storage"
)

var cacheOlderThan time.Duration

func init() {
	cachePruneCmd.Flags().DurationVar(&cacheOlderThan, "older-than", 30*24*time.Hour, "Remove entries older than this")
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the AI enhancement cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the cache location and entry count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		cache := mustOpenCache(cfg)
		defer cache.Close()

		n, err := cache.Count(cmd.Context())
		if err != nil {
			exitWithError(ExitError, "counting cache entries: %v", err)
		}
		if humanOutput {
			outputHuman("%s: %d entries\n", cfg.AI.CachePath, n)
			return nil
		}
		return outputJSON(StatusResponse{Status: "ok", Path: cfg.AI.CachePath, Count: n})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		cache := mustOpenCache(cfg)
		defer cache.Close()

		n, err := cache.Prune(cmd.Context(), time.Now().Add(-cacheOlderThan))
		if err != nil {
			exitWithError(ExitError, "pruning cache: %v", err)
		}
		if humanOutput {
			outputHuman("Removed %d entries from %s\n", n, cfg.AI.CachePath)
			return nil
		}
		return outputJSON(StatusResponse{Status: "pruned", Path: cfg.AI.CachePath, Count: int(n)})
	},
}

func mustOpenCache(cfg *config.Config) *storage.Cache {
	if cfg.AI.CachePath == "" {
		exitWithError(ExitConfigError, "ai.cache_path is not set in %s", config.Path())
	}
	cache, err := storage.OpenCache(cfg.AI.CachePath)
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	return cache
}
