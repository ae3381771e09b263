package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matsen/apalint/internal/enhance"
)

const (
	// Dir is the directory name under XDG_CONFIG_HOME.
	Dir = "apalint"
	// File is the config file name.
	File = "config.yml"
)

// Environment variables holding provider API keys.
const (
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvOpenAIKey = "OPENAI_API_KEY"
)

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/apalint/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, Dir, File)
}

// Load reads the config file at Path. A missing file yields Default.
func Load() (*Config, error) {
	path := Path()
	if path == "" {
		cfg := Default()
		return &cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads settings from path over the defaults, so a file only
// needs the keys it changes. A missing file yields Default. The result is
// validated.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.AI.CachePath != "" {
		cfg.AI.CachePath = ExpandPath(cfg.AI.CachePath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// APIKey returns the key for the configured provider: the environment
// variable first, then ai.api_key.
func (c *Config) APIKey() string {
	env := EnvGeminiKey
	if strings.ToLower(c.AI.Provider) == enhance.ProviderOpenAI {
		env = EnvOpenAIKey
	}
	if key := strings.TrimSpace(os.Getenv(env)); key != "" {
		return key
	}
	return c.AI.APIKey
}

// RequireAPIKey returns the provider key or an error naming the variable
// to set.
func (c *Config) RequireAPIKey() (string, error) {
	if key := c.APIKey(); key != "" {
		return key, nil
	}
	env := EnvGeminiKey
	if strings.ToLower(c.AI.Provider) == enhance.ProviderOpenAI {
		env = EnvOpenAIKey
	}
	return "", fmt.Errorf("%w: set %s or ai.api_key in %s", enhance.ErrNoAPIKey, env, Path())
}
