// Package app assembles the translation service from configuration. Both the
// API server and the worker start from here.
package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Ininit/OpenTranslate/internal/cache"
	"github.com/Ininit/OpenTranslate/internal/config"
	"github.com/Ininit/OpenTranslate/internal/database"
	"github.com/Ininit/OpenTranslate/internal/history"
	"github.com/Ininit/OpenTranslate/internal/llm"
	"github.com/Ininit/OpenTranslate/internal/queue"
	"github.com/Ininit/OpenTranslate/internal/speech"
	"github.com/Ininit/OpenTranslate/internal/translation"
	"github.com/Ininit/OpenTranslate/internal/translator"
	"github.com/Ininit/OpenTranslate/internal/translator/deepl"
	"github.com/Ininit/OpenTranslate/internal/translator/llmtrans"
	"github.com/Ininit/OpenTranslate/migrations"
)

// Providers builds every translation provider cfg enables. DeepL needs no
// credentials and is always present.
func Providers(cfg *config.Config) []translator.Provider {
	providers := []translator.Provider{
		deepl.New(deepl.Config{
			Endpoint:  cfg.Translator.DeepLEndpoint,
			LMTBID:    cfg.Translator.DeepLLMTBID,
			UserAgent: cfg.Translator.DeepLUserAgent,
			Timeout:   cfg.Translator.Timeout,
		}),
	}

	add := func(p llm.Provider, model string) {
		providers = append(providers, llmtrans.New(llm.WithRetry(p, cfg.LLM.MaxRetries), llmtrans.Config{
			Name:        p.Name(),
			Model:       model,
			Temperature: cfg.LLM.Temperature,
		}))
	}
	if cfg.LLM.OpenAIKey != "" {
		add(llm.NewOpenAIProvider(cfg.LLM.OpenAIKey, cfg.LLM.OpenAIBaseURL), cfg.LLM.OpenAIModel)
	}
	if cfg.LLM.AnthropicKey != "" {
		add(llm.NewAnthropicProvider(cfg.LLM.AnthropicKey, cfg.LLM.AnthropicBaseURL), cfg.LLM.AnthropicModel)
	}
	if cfg.LLM.OllamaURL != "" {
		add(llm.NewOllamaProvider(cfg.LLM.OllamaURL), cfg.LLM.OllamaModel)
	}
	return providers
}

func Gateway(cfg *config.Config) *translator.Gateway {
	return translator.NewGateway(cfg.Translator.DefaultProvider, cfg.Translator.FallbackProvider, Providers(cfg)...)
}

// Synthesizer returns the configured audio backend, or nil when speech
// synthesis is disabled.
func Synthesizer(cfg config.TTSConfig) speech.Synthesizer {
	switch cfg.Backend {
	case "openai":
		return speech.NewOpenAI(speech.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Voice:   cfg.OpenAIVoice,
		})
	case "local":
		return speech.NewPiper(speech.PiperConfig{
			BinPath: cfg.LocalBinPath,
			Models:  map[string]string{"": cfg.LocalModel},
		})
	default:
		return nil
	}
}

// Migrations returns MIGRATIONS_PATH when set, else the embedded files.
func Migrations(cfg config.DatabaseConfig) fs.FS {
	if cfg.MigrationsPath != "" {
		return os.DirFS(cfg.MigrationsPath)
	}
	return migrations.FS
}

// App holds the connections opened by New. Pool and Redis are nil when the
// backing service is unreachable.
type App struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Cache   *cache.Cache
	Queue   *queue.Client
	Service *translation.Service
}

type Options struct {
	// Enqueue opens an asynq client so the service can queue jobs.
	Enqueue bool
}

// New connects to Postgres and Redis when reachable and builds the service
// over whatever is available. Missing backends disable caching, history and
// jobs rather than failing startup.
func New(ctx context.Context, cfg *config.Config, opts Options) *App {
	a := &App{Config: cfg}
	var svcOpts translation.Options

	if cfg.Database.URL == "" {
		slog.Warn("DATABASE_URL not set, running without history")
	} else if pool, err := database.NewPool(ctx, cfg.Database); err != nil {
		slog.Warn("database unavailable, running without history", "error", err)
	} else if err := database.RunMigrations(ctx, pool, Migrations(cfg.Database)); err != nil {
		slog.Warn("migrations failed, running without history", "error", err)
		pool.Close()
	} else {
		a.Pool = pool
		svcOpts.History = history.NewStore(pool)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache and jobs", "error", err)
		rdb.Close()
	} else {
		a.Redis = rdb
		a.Cache = cache.NewCache(rdb, cfg.Redis.CachePrefix)
		svcOpts.Cache = a.Cache
		svcOpts.CacheTTL = cfg.Redis.CacheTTL
		if opts.Enqueue {
			a.Queue = queue.NewClient(cfg.Redis)
			svcOpts.Queue = a.Queue
		}
	}

	a.Service = translation.NewService(Gateway(cfg), svcOpts)
	return a
}

func (a *App) Close() {
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			slog.Warn("close queue client", "error", err)
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
