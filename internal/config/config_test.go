package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/apalint/internal/enhance"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.AbstractMaxWords != 250 || cfg.MinTitleConfidence != 0.4 || cfg.FuzzyThreshold != 0.8 {
		t.Errorf("Default() = %+v", cfg)
	}
	if cfg.AI.ChunkChars != 6000 || cfg.AI.ChunkTimeout != 60*time.Second || cfg.AI.MaxRetries != 3 {
		t.Errorf("Default().AI = %+v", cfg.AI)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero abstract words", func(c *Config) { c.AbstractMaxWords = 0 }},
		{"negative abstract chars", func(c *Config) { c.AbstractMaxChars = -1 }},
		{"title confidence above 1", func(c *Config) { c.MinTitleConfidence = 1.5 }},
		{"zero fuzzy threshold", func(c *Config) { c.FuzzyThreshold = 0 }},
		{"zero title blocks", func(c *Config) { c.MaxTitleBlocks = 0 }},
		{"unknown provider", func(c *Config) { c.AI.Provider = "llama" }},
		{"negative retries", func(c *Config) { c.AI.MaxRetries = -1 }},
		{"negative rate", func(c *Config) { c.AI.RateLimit = -2 }},
		{"zero chunk chars", func(c *Config) { c.AI.ChunkChars = 0 }},
		{"zero concurrency", func(c *Config) { c.AI.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := Path(), "/custom/config/apalint/config.yml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoad_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AbstractMaxWords != Default().AbstractMaxWords {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadFile_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `abstract_max_words: 200
ai:
  provider: openai
  chunk_timeout: 30s
  rate_limit: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.AbstractMaxWords != 200 {
		t.Errorf("AbstractMaxWords = %d, want 200", cfg.AbstractMaxWords)
	}
	if cfg.FuzzyThreshold != 0.8 {
		t.Errorf("FuzzyThreshold = %v, want default 0.8", cfg.FuzzyThreshold)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.ChunkTimeout != 30*time.Second || cfg.AI.RateLimit != 2 {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.AI.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want default 4", cfg.AI.Concurrency)
	}
	if !cfg.ValidatorConfig().CheckFormat {
		t.Errorf("ValidatorConfig().CheckFormat = false, want default true")
	}
	opts := cfg.EnhanceOptions()
	if opts.RateLimit != 2 || opts.ChunkTimeout != 30*time.Second {
		t.Errorf("EnhanceOptions() = %+v", opts)
	}
	if v := cfg.ValidatorConfig(); v.AbstractMaxWords != 200 {
		t.Errorf("ValidatorConfig() = %+v", v)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, content string
	}{
		{"bad yaml", "abstract_max_words: [1"},
		{"out of range", "fuzzy_threshold: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() error = nil, want error")
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv(EnvGeminiKey, "")
	t.Setenv(EnvOpenAIKey, "")

	cfg := Default()
	if _, err := cfg.RequireAPIKey(); !errors.Is(err, enhance.ErrNoAPIKey) {
		t.Errorf("RequireAPIKey() error = %v, want ErrNoAPIKey", err)
	}

	cfg.AI.APIKey = "from-file"
	if got := cfg.APIKey(); got != "from-file" {
		t.Errorf("APIKey() = %q, want from-file", got)
	}

	t.Setenv(EnvGeminiKey, "from-env")
	if got := cfg.APIKey(); got != "from-env" {
		t.Errorf("APIKey() = %q, want from-env", got)
	}

	cfg.AI.Provider = "openai"
	if got := cfg.APIKey(); got != "from-file" {
		t.Errorf("openai APIKey() = %q, want from-file", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	tests := []struct{ in, want string }{
		{"~/cache.db", filepath.Join(home, "cache.db")},
		{"/abs/cache.db", "/abs/cache.db"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
