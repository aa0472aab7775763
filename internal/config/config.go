package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Translator TranslatorConfig `mapstructure:"translator"`
	LLM        LLMConfig        `mapstructure:"llm"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConns       int    `mapstructure:"max_conns"`
	MinConns       int    `mapstructure:"min_conns"`
	MigrationsPath string `mapstructure:"migrations_path"` // empty: embedded migrations
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CachePrefix string        `mapstructure:"cache_prefix"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // empty disables auth
}

type TranslatorConfig struct {
	DefaultProvider  string        `mapstructure:"default_provider"`
	FallbackProvider string        `mapstructure:"fallback_provider"`
	Timeout          time.Duration `mapstructure:"timeout"`
	DeepLEndpoint    string        `mapstructure:"deepl_endpoint"`
	DeepLLMTBID      string        `mapstructure:"deepl_lmtbid"`
	DeepLUserAgent   string        `mapstructure:"deepl_user_agent"`
}

type LLMConfig struct {
	OpenAIKey        string  `mapstructure:"openai_key"`
	OpenAIBaseURL    string  `mapstructure:"openai_base_url"`
	OpenAIModel      string  `mapstructure:"openai_model"`
	AnthropicKey     string  `mapstructure:"anthropic_key"`
	AnthropicBaseURL string  `mapstructure:"anthropic_base_url"`
	AnthropicModel   string  `mapstructure:"anthropic_model"`
	OllamaURL        string  `mapstructure:"ollama_url"`
	OllamaModel      string  `mapstructure:"ollama_model"`
	Temperature      float64 `mapstructure:"temperature"`
	MaxRetries       int     `mapstructure:"max_retries"`
}

type TTSConfig struct {
	Backend       string `mapstructure:"backend"` // "openai", "local" or "" to disable
	OpenAIKey     string `mapstructure:"openai_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIVoice   string `mapstructure:"openai_voice"`
	LocalBinPath  string `mapstructure:"local_bin_path"`
	LocalModel    string `mapstructure:"local_model"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// setting binds a config key to its environment variable and default.
type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"server.host", "SERVER_HOST", "0.0.0.0"},
	{"server.port", "SERVER_PORT", 8080},
	{"server.cors_origins", "CORS_ORIGINS", []string{"*"}},
	{"server.rate_limit_rps", "RATE_LIMIT_RPS", 100.0},
	{"server.rate_limit_burst", "RATE_LIMIT_BURST", 200},
	{"server.max_upload_mb", "MAX_UPLOAD_MB", 10},

	{"database.url", "DATABASE_URL", ""},
	{"database.max_conns", "DB_MAX_CONNS", 20},
	{"database.min_conns", "DB_MIN_CONNS", 5},
	{"database.migrations_path", "MIGRATIONS_PATH", ""},

	{"redis.addr", "REDIS_ADDR", "localhost:6379"},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"redis.db", "REDIS_DB", 0},
	{"redis.cache_ttl", "CACHE_TTL", "24h"},
	{"redis.cache_prefix", "CACHE_PREFIX", "translate:"},

	{"auth.jwt_secret", "JWT_SECRET", ""},

	{"translator.default_provider", "TRANSLATOR_DEFAULT_PROVIDER", "deepl"},
	{"translator.fallback_provider", "TRANSLATOR_FALLBACK_PROVIDER", ""},
	{"translator.timeout", "TRANSLATOR_TIMEOUT", "30s"},
	{"translator.deepl_endpoint", "DEEPL_ENDPOINT", ""},
	{"translator.deepl_lmtbid", "DEEPL_LMTBID", ""},
	{"translator.deepl_user_agent", "DEEPL_USER_AGENT", ""},

	{"llm.openai_key", "OPENAI_API_KEY", ""},
	{"llm.openai_base_url", "OPENAI_BASE_URL", ""},
	{"llm.openai_model", "OPENAI_MODEL", "gpt-4o-mini"},
	{"llm.anthropic_key", "ANTHROPIC_API_KEY", ""},
	{"llm.anthropic_base_url", "ANTHROPIC_BASE_URL", ""},
	{"llm.anthropic_model", "ANTHROPIC_MODEL", "claude-3-haiku-20240307"},
	{"llm.ollama_url", "OLLAMA_URL", ""},
	{"llm.ollama_model", "OLLAMA_MODEL", "llama3"},
	{"llm.temperature", "LLM_TEMPERATURE", 0.0},
	{"llm.max_retries", "LLM_MAX_RETRIES", 2},

	{"tts.backend", "TTS_BACKEND", ""},
	{"tts.openai_key", "OPENAI_API_KEY", ""},
	{"tts.openai_base_url", "TTS_OPENAI_BASE_URL", ""},
	{"tts.openai_model", "TTS_OPENAI_MODEL", ""},
	{"tts.openai_voice", "TTS_OPENAI_VOICE", ""},
	{"tts.local_bin_path", "TTS_LOCAL_PIPER_BIN", "piper"},
	{"tts.local_model", "TTS_LOCAL_PIPER_MODEL", ""},

	{"worker.concurrency", "WORKER_CONCURRENCY", 10},
}

// Load reads configuration from the environment. When CONFIG_FILE is set the
// named YAML/JSON/TOML file is read first; environment variables win over it.
func Load() (*Config, error) {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}

	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("bind CONFIG_FILE: %w", err)
	}
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports settings that make the configured providers unusable.
func (c *Config) Validate() error {
	var missing []string
	need := func(provider string) {
		switch provider {
		case "openai":
			if c.LLM.OpenAIKey == "" {
				missing = append(missing, "OPENAI_API_KEY")
			}
		case "anthropic":
			if c.LLM.AnthropicKey == "" {
				missing = append(missing, "ANTHROPIC_API_KEY")
			}
		case "ollama":
			if c.LLM.OllamaURL == "" {
				missing = append(missing, "OLLAMA_URL")
			}
		}
	}

	if strings.TrimSpace(c.Translator.DefaultProvider) == "" {
		missing = append(missing, "TRANSLATOR_DEFAULT_PROVIDER")
	}
	need(strings.ToLower(c.Translator.DefaultProvider))
	need(strings.ToLower(c.Translator.FallbackProvider))

	switch c.TTS.Backend {
	case "", "openai":
		if c.TTS.Backend == "openai" && c.TTS.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "local":
		if c.TTS.LocalModel == "" {
			missing = append(missing, "TTS_LOCAL_PIPER_MODEL")
		}
	default:
		return fmt.Errorf("unknown TTS_BACKEND %q", c.TTS.Backend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}
