package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Options for loading config.
type Options struct {
	ConfigPath   string
	SkipValidate bool // if true, do not validate (e.g. for config print)
	// Overrides apply last (flags > env > file > defaults). Nil means no CLI overrides.
	Overrides *Overrides
}

// Overrides holds CLI flag values that take precedence over env/file/defaults.
// Only non-nil fields are applied.
type Overrides struct {
	GeminiBaseURL *string
	GeminiModel   *string
}

// Load builds config with precedence: defaults → .gemini2mcp.yaml → env vars
// → Overrides. Returns an error suitable for exit code 2 when invalid.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	// Load optional local dotenv files for developer ergonomics.
	// Precedence stays: explicit env > .env.local > .env.
	if err := loadDotEnvFiles(".env.local", ".env"); err != nil {
		return nil, fmt.Errorf("CONFIG_INVALID: failed loading dotenv files: %w", err)
	}

	configPath := strings.TrimSpace(opts.ConfigPath)
	if configPath == "" {
		configPath = ".gemini2mcp.yaml"
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("CONFIG_INVALID: cannot read config file %s: %w", configPath, err)
		}
	} else {
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("CONFIG_INVALID: malformed YAML in %s: %w", configPath, err)
		}
		if v := strings.TrimSpace(fc.BaseURL); v != "" {
			cfg.GeminiBaseURL = v
		}
		if v := strings.TrimSpace(fc.Model); v != "" {
			cfg.GeminiModel = v
		}
	}

	// Env overlay
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_BASE_URL"); v != "" {
		cfg.GeminiBaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}

	// CLI overrides (highest precedence)
	if opts.Overrides != nil {
		applyOverrides(&cfg, opts.Overrides)
	}

	if !opts.SkipValidate {
		if err := Validate(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.GeminiBaseURL != nil {
		cfg.GeminiBaseURL = *o.GeminiBaseURL
	}
	if o.GeminiModel != nil {
		cfg.GeminiModel = *o.GeminiModel
	}
}

// loadDotEnvFiles loads each existing dotenv file without overriding values
// already present in the environment.
func loadDotEnvFiles(paths ...string) error {
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for key, value := range values {
			if existing, exists := os.LookupEnv(key); exists && strings.TrimSpace(existing) != "" {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}
