package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source names accepted by --source / TABASK_SOURCE.
const (
	SourceLive    = "live"
	SourceChrome  = "chrome"
	SourceFirefox = "firefox"
)

// Provider names accepted by --provider / TABASK_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds everything resolved from the environment. Command-line flags
// are applied on top by main.
type Config struct {
	// Completion
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	OllamaHost  string
	Temperature float64
	Timeout     time.Duration // 0 means no timeout

	// Browser
	Source  string
	Port    int
	CDPURL  string
	Profile string

	// Local state
	DataDir string
	History bool
}

// Load reads configuration from environment variables and an optional .env
// file in the working directory. Existing environment variables win over .env.
func Load() *Config {
	_ = godotenv.Load()

	provider := strings.ToLower(getEnvOrDefault("TABASK_PROVIDER", ProviderOpenAI))
	cfg := &Config{
		Provider:    provider,
		Model:       getEnvOrDefault("TABASK_MODEL", DefaultModel(provider)),
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		BaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OllamaHost:  getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
		Temperature: getEnvFloatOrDefault("TABASK_TEMPERATURE", 0.7),
		Timeout:     getEnvDurationOrDefault("TABASK_TIMEOUT", 0),
		Source:      strings.ToLower(getEnvOrDefault("TABASK_SOURCE", SourceLive)),
		Port:        getEnvIntOrDefault("TABASK_PORT", 19191),
		CDPURL:      getEnvOrDefault("TABASK_CDP_URL", "http://127.0.0.1:9222"),
		Profile:     os.Getenv("TABASK_PROFILE"),
		DataDir:     getEnvOrDefault("TABASK_DATA_DIR", defaultDataDir()),
		History:     getEnvBoolOrDefault("TABASK_HISTORY", false),
	}
	return cfg
}

// DefaultModel returns the model used when TABASK_MODEL is unset.
func DefaultModel(provider string) string {
	if provider == ProviderOllama {
		return "llama3.2"
	}
	return "gpt-3.5-turbo"
}

// DBPath returns the history database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "tabask.db")
}

// LogDir returns the directory applog writes to.
func (c *Config) LogDir() string {
	return c.DataDir
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tabask"
	}
	return filepath.Join(home, ".local", "share", "tabask")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
