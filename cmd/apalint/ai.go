package main

import (
	"log/slog"

	"github.com/matsen/apalint/internal/config"
	"github.com/matsen/apalint/internal/enhance"
	"github.com/matsen/apalint/internal/importer"
	"github.com/matsen/apalint/internal/storage"
)

// useAI is set by --ai on commands that import documents.
var useAI bool

// mustImportOptions builds importer options from the config, wiring the AI
// provider and cache when --ai is set. The returned func releases the cache.
func mustImportOptions(cfg *config.Config) (importer.Options, func()) {
	opts := importer.Options{Config: cfg, Logger: slog.Default()}
	closer := func() {}
	if !useAI {
		return opts, closer
	}
	if !cfg.AIEnabled() {
		exitWithError(ExitConfigError, "--ai given but ai.provider is %q", cfg.AI.Provider)
	}

	key, err := cfg.RequireAPIKey()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	provider, err := enhance.NewProvider(cfg.AI.Provider, cfg.AI.Model, key)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	opts.Provider = provider

	if cfg.AI.CachePath != "" {
		cache, err := storage.OpenCache(cfg.AI.CachePath)
		if err != nil {
			exitWithError(ExitConfigError, "opening enhancement cache: %v", err)
		}
		opts.Cache = cache
		closer = func() { cache.Close() }
	}
	return opts, closer
}
