// Package config handles apalint settings: rule thresholds, classifier
// limits and the optional AI enhancement provider.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matsen/apalint/internal/classify"
	"github.com/matsen/apalint/internal/enhance"
	"github.com/matsen/apalint/internal/validate"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ProviderNone disables AI enhancement even when --ai is given.
const ProviderNone = "none"

// AIConfig configures AI enhancement. The API key is read from the
// environment unless api_key is set.
type AIConfig struct {
	Provider     string        `yaml:"provider,omitempty"`
	Model        string        `yaml:"model,omitempty"`
	APIKey       string        `yaml:"api_key,omitempty"`
	MaxRetries   int           `yaml:"max_retries"`
	ChunkTimeout time.Duration `yaml:"chunk_timeout"`
	RateLimit    float64       `yaml:"rate_limit,omitempty"` // requests per second, 0 = unlimited
	ChunkChars   int           `yaml:"chunk_chars"`
	Concurrency  int           `yaml:"concurrency"`
	CachePath    string        `yaml:"cache_path,omitempty"`
}

// Config is the complete settings file.
type Config struct {
	AbstractMaxWords   int     `yaml:"abstract_max_words"`
	AbstractMaxChars   int     `yaml:"abstract_max_chars,omitempty"` // 0 = no character limit
	MinTitleConfidence float64 `yaml:"min_title_confidence"`
	FuzzyThreshold     float64 `yaml:"fuzzy_threshold"`
	MaxTitleBlocks     int     `yaml:"max_title_blocks"`
	CheckFormat        bool    `yaml:"check_format"`

	AI AIConfig `yaml:"ai"`
}

// Default returns the built-in settings.
func Default() Config {
	v := validate.DefaultConfig()
	c := classify.DefaultOptions()
	e := enhance.DefaultOptions()
	return Config{
		AbstractMaxWords:   v.AbstractMaxWords,
		MinTitleConfidence: v.MinTitleConfidence,
		FuzzyThreshold:     v.FuzzyThreshold,
		MaxTitleBlocks:     c.MaxTitleBlocks,
		CheckFormat:        v.CheckFormat,
		AI: AIConfig{
			Provider:     enhance.ProviderGemini,
			MaxRetries:   e.MaxRetries,
			ChunkTimeout: e.ChunkTimeout,
			ChunkChars:   enhance.DefaultChunkChars,
			Concurrency:  e.Concurrency,
		},
	}
}

// AIEnabled reports whether a provider is configured.
func (c *Config) AIEnabled() bool {
	return strings.ToLower(c.AI.Provider) != ProviderNone
}

// Validate checks ranges. It does not require an API key; see RequireAPIKey.
func (c *Config) Validate() error {
	switch {
	case c.AbstractMaxWords <= 0:
		return fmt.Errorf("%w: abstract_max_words must be positive, got %d", ErrInvalid, c.AbstractMaxWords)
	case c.AbstractMaxChars < 0:
		return fmt.Errorf("%w: abstract_max_chars must not be negative, got %d", ErrInvalid, c.AbstractMaxChars)
	case c.MinTitleConfidence < 0 || c.MinTitleConfidence > 1:
		return fmt.Errorf("%w: min_title_confidence must be in [0,1], got %g", ErrInvalid, c.MinTitleConfidence)
	case c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1:
		return fmt.Errorf("%w: fuzzy_threshold must be in (0,1], got %g", ErrInvalid, c.FuzzyThreshold)
	case c.MaxTitleBlocks <= 0:
		return fmt.Errorf("%w: max_title_blocks must be positive, got %d", ErrInvalid, c.MaxTitleBlocks)
	}

	ai := c.AI
	switch strings.ToLower(ai.Provider) {
	case enhance.ProviderGemini, enhance.ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("%w: ai.provider must be %q, %q or %q, got %q",
			ErrInvalid, enhance.ProviderGemini, enhance.ProviderOpenAI, ProviderNone, ai.Provider)
	}
	switch {
	case ai.MaxRetries < 0:
		return fmt.Errorf("%w: ai.max_retries must not be negative", ErrInvalid)
	case ai.ChunkTimeout < 0:
		return fmt.Errorf("%w: ai.chunk_timeout must not be negative", ErrInvalid)
	case ai.RateLimit < 0:
		return fmt.Errorf("%w: ai.rate_limit must not be negative", ErrInvalid)
	case ai.ChunkChars <= 0:
		return fmt.Errorf("%w: ai.chunk_chars must be positive", ErrInvalid)
	case ai.Concurrency <= 0:
		return fmt.Errorf("%w: ai.concurrency must be positive", ErrInvalid)
	}
	return nil
}

// ValidatorConfig returns the rule thresholds.
func (c *Config) ValidatorConfig() validate.Config {
	return validate.Config{
		MinTitleConfidence: c.MinTitleConfidence,
		AbstractMaxWords:   c.AbstractMaxWords,
		AbstractMaxChars:   c.AbstractMaxChars,
		FuzzyThreshold:     c.FuzzyThreshold,
		CheckFormat:        c.CheckFormat,
	}
}

// ClassifyOptions returns the classifier limits.
func (c *Config) ClassifyOptions() classify.Options {
	return classify.Options{
		MaxTitleBlocks:   c.MaxTitleBlocks,
		AbstractMaxWords: c.AbstractMaxWords,
	}
}

// EnhanceOptions returns the enhancement runner settings.
func (c *Config) EnhanceOptions() enhance.Options {
	opts := enhance.DefaultOptions()
	opts.MaxRetries = c.AI.MaxRetries
	opts.ChunkTimeout = c.AI.ChunkTimeout
	opts.RateLimit = c.AI.RateLimit
	opts.Concurrency = c.AI.Concurrency
	return opts
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
