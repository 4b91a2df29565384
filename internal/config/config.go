package config

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"

	// EnvAPIKey holds the upstream credential. Its absence is fatal at
	// startup; the server never begins serving without it.
	EnvAPIKey = "GEMINI_API_KEY"
)

type Config struct {
	// GeminiAPIKey is runtime-only. It is read from the environment and is
	// never written back to disk.
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
}

// fileConfig is the on-disk yaml shape. The API key is deliberately absent.
type fileConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

func Default() Config {
	return Config{
		GeminiBaseURL: DefaultBaseURL,
		GeminiModel:   DefaultModel,
	}
}
