package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr %q", cfg.Addr())
	}
	if cfg.Translator.DefaultProvider != "deepl" || cfg.Translator.Timeout != 30*time.Second {
		t.Fatalf("unexpected translator defaults %+v", cfg.Translator)
	}
	if cfg.Redis.CacheTTL != 24*time.Hour {
		t.Fatalf("cache ttl %v", cfg.Redis.CacheTTL)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Fatalf("cors origins %v", cfg.Server.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TRANSLATOR_FALLBACK_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Redis.CacheTTL != 90*time.Minute {
		t.Fatalf("env not applied: %+v %+v", cfg.Server, cfg.Redis)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("cors origins %v", cfg.Server.CORSOrigins)
	}
	if cfg.LLM.OpenAIKey != "sk-test" || cfg.TTS.OpenAIKey != "sk-test" {
		t.Fatal("OPENAI_API_KEY should feed both llm and tts")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "translator:\n  default_provider: anthropic\nllm:\n  anthropic_key: from-file\nserver:\n  port: 7000\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Translator.DefaultProvider != "anthropic" || cfg.LLM.AnthropicKey != "from-file" {
		t.Fatalf("file values not applied: %+v", cfg.Translator)
	}
	if cfg.Server.Port != 7001 {
		t.Fatalf("environment should win over file, port %d", cfg.Server.Port)
	}
}

func TestValidateMissing(t *testing.T) {
	cfg := &Config{
		Translator: TranslatorConfig{DefaultProvider: "openai", FallbackProvider: "anthropic"},
		TTS:        TTSConfig{Backend: "local"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "TTS_LOCAL_PIPER_MODEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}

	cfg.TTS.Backend = "espeak"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "TTS_BACKEND") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}
