package config

import "fmt"

// Validate checks required fields. Returns an error with an actionable
// message (e.g. "Set env: GEMINI_API_KEY=...") so the caller can exit 2.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("CONFIG_INVALID: nil config")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("CONFIG_INVALID: Missing %s\nSet env: %s=...", EnvAPIKey, EnvAPIKey)
	}
	if cfg.GeminiBaseURL == "" {
		return fmt.Errorf("CONFIG_INVALID: base_url must not be empty")
	}
	if cfg.GeminiModel == "" {
		return fmt.Errorf("CONFIG_INVALID: model must not be empty")
	}
	return nil
}
