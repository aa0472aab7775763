// Package translation runs translations through the provider gateway with
// result caching, history and queued jobs layered on top.
package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ininit/OpenTranslate/internal/cache"
	"github.com/Ininit/OpenTranslate/internal/models"
	"github.com/Ininit/OpenTranslate/internal/queue"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

var (
	ErrHistoryUnavailable = errors.New("translation history is not configured")
	ErrJobsUnavailable    = errors.New("translation jobs are not configured")
)

// Cache stores translation results. *cache.Cache satisfies it.
type Cache interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// History persists translations. *history.Store satisfies it.
type History interface {
	Record(ctx context.Context, provider string, req translator.Request, res *translator.Result) (uuid.UUID, error)
	CreatePending(ctx context.Context, jobID uuid.UUID, provider string, req translator.Request) error
	Complete(ctx context.Context, jobID uuid.UUID, res *translator.Result) error
	Fail(ctx context.Context, jobID uuid.UUID, reason string) error
	GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Translation, error)
	List(ctx context.Context, limit, offset int) ([]models.Translation, error)
}

// Enqueuer hands jobs to the worker. *queue.Client satisfies it.
type Enqueuer interface {
	EnqueueTranslate(ctx context.Context, payload queue.TranslatePayload) error
}

type Options struct {
	Cache    Cache
	CacheTTL time.Duration
	History  History
	Queue    Enqueuer
}

type Service struct {
	gateway  *translator.Gateway
	cache    Cache
	cacheTTL time.Duration
	history  History
	queue    Enqueuer
}

// NewService wires the gateway with the optional collaborators in opts; any
// of them may be nil.
func NewService(gateway *translator.Gateway, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Service{
		gateway:  gateway,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		history:  opts.History,
		queue:    opts.Queue,
	}
}

type Input struct {
	Provider string
	Request  translator.Request
}

// Output is a translation result plus whether it was served from cache.
type Output struct {
	translator.Result
	Cached bool `json:"cached"`
}

// Translate serves from cache when possible, otherwise calls the provider,
// caches and records the result. Cache and history failures are logged only.
func (s *Service) Translate(ctx context.Context, in Input) (*Output, error) {
	out, err := s.translate(ctx, in)
	if err != nil {
		return nil, err
	}
	if s.history != nil && !out.Cached {
		if _, err := s.history.Record(ctx, out.Engine, in.Request, &out.Result); err != nil {
			slog.Warn("record translation history failed", "provider", out.Engine, "error", err)
		}
	}
	return out, nil
}

func (s *Service) translate(ctx context.Context, in Input) (*Output, error) {
	key := ""
	if s.cache != nil {
		key = s.cacheKey(in)
		var cached translator.Result
		switch err := s.cache.Get(ctx, key, &cached); {
		case err == nil:
			return &Output{Result: cached, Cached: true}, nil
		case !errors.Is(err, cache.ErrMiss):
			slog.Warn("translation cache read failed", "error", err)
		}
	}

	res, err := s.gateway.Translate(ctx, in.Provider, in.Request)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
			slog.Warn("translation cache write failed", "error", err)
		}
	}
	return &Output{Result: *res}, nil
}

func (s *Service) cacheKey(in Input) string {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	config := ""
	if len(in.Request.Config) > 0 {
		data, _ := json.Marshal(in.Request.Config)
		config = string(data)
	}
	return s.cache.Key(provider, string(in.Request.From), string(in.Request.To), in.Request.Text, config)
}

func (s *Service) Detect(ctx context.Context, provider, text string) (translator.Language, error) {
	return s.gateway.Detect(ctx, provider, text)
}

func (s *Service) Speak(ctx context.Context, provider, text string, lang translator.Language) (string, error) {
	return s.gateway.Speak(ctx, provider, text, lang)
}

func (s *Service) Providers() []translator.ProviderInfo {
	return s.gateway.ListProviders()
}

func (s *Service) Languages(provider string) ([]translator.Language, error) {
	p, err := s.gateway.Provider(provider)
	if err != nil {
		return nil, err
	}
	return p.SupportedLanguages(), nil
}

// Enqueue stores a pending history row and queues the translation.
func (s *Service) Enqueue(ctx context.Context, in Input) (uuid.UUID, error) {
	if s.history == nil || s.queue == nil {
		return uuid.Nil, ErrJobsUnavailable
	}
	if strings.TrimSpace(in.Request.Text) == "" {
		return uuid.Nil, translator.ErrEmptyText
	}
	if _, err := s.gateway.Provider(in.Provider); err != nil {
		return uuid.Nil, err
	}

	jobID := uuid.New()
	if err := s.history.CreatePending(ctx, jobID, in.Provider, in.Request); err != nil {
		return uuid.Nil, fmt.Errorf("create job: %w", err)
	}

	err := s.queue.EnqueueTranslate(ctx, queue.TranslatePayload{
		JobID:    jobID.String(),
		Provider: in.Provider,
		Text:     in.Request.Text,
		From:     string(in.Request.From),
		To:       string(in.Request.To),
		Config:   in.Request.Config,
	})
	if err != nil {
		if ferr := s.history.Fail(ctx, jobID, err.Error()); ferr != nil {
			slog.Warn("mark job failed", "job_id", jobID, "error", ferr)
		}
		return uuid.Nil, err
	}
	return jobID, nil
}

// RunJob translates a queued job and stores the outcome on its history row.
func (s *Service) RunJob(ctx context.Context, jobID uuid.UUID, in Input) error {
	if s.history == nil {
		return ErrHistoryUnavailable
	}
	out, err := s.translate(ctx, in)
	if err != nil {
		if ferr := s.history.Fail(ctx, jobID, err.Error()); ferr != nil {
			slog.Warn("mark job failed", "job_id", jobID, "error", ferr)
		}
		return err
	}
	return s.history.Complete(ctx, jobID, &out.Result)
}

func (s *Service) Job(ctx context.Context, jobID uuid.UUID) (*models.Translation, error) {
	if s.history == nil {
		return nil, ErrJobsUnavailable
	}
	return s.history.GetByJob(ctx, jobID)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]models.Translation, error) {
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	return s.history.List(ctx, limit, offset)
}
