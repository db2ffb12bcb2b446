package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	for _, k := range []string{"TABASK_PROVIDER", "TABASK_MODEL", "TABASK_TEMPERATURE", "TABASK_SOURCE", "TABASK_PORT", "TABASK_TIMEOUT", "TABASK_HISTORY"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q, want gpt-3.5-turbo", cfg.Model)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.Source != SourceLive || cfg.Port != 19191 {
		t.Errorf("Source/Port = %q/%d", cfg.Source, cfg.Port)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", cfg.Timeout)
	}
	if cfg.History {
		t.Error("History should be off by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TABASK_PROVIDER", "Ollama")
	t.Setenv("TABASK_MODEL", "")
	t.Setenv("TABASK_PORT", "2000")
	t.Setenv("TABASK_TIMEOUT", "30s")
	t.Setenv("TABASK_HISTORY", "1")
	t.Setenv("TABASK_TEMPERATURE", "bogus")

	cfg := Load()
	if cfg.Provider != ProviderOllama {
		t.Errorf("Provider = %q, want ollama", cfg.Provider)
	}
	if cfg.Model != "llama3.2" {
		t.Errorf("Model = %q, want llama3.2", cfg.Model)
	}
	if cfg.Port != 2000 {
		t.Errorf("Port = %d, want 2000", cfg.Port)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if !cfg.History {
		t.Error("History should be on")
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("invalid temperature should fall back, got %v", cfg.Temperature)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TABASK_SOURCE", "")
	os.Unsetenv("TABASK_SOURCE")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TABASK_SOURCE=chrome\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TABASK_SOURCE") })

	cfg := Load()
	if cfg.Source != SourceChrome {
		t.Errorf("Source = %q, want chrome", cfg.Source)
	}
}
