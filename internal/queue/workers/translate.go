package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/Ininit/OpenTranslate/internal/history"
	"github.com/Ininit/OpenTranslate/internal/queue"
	"github.com/Ininit/OpenTranslate/internal/translation"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

// JobRunner runs one queued translation. *translation.Service satisfies it.
type JobRunner interface {
	RunJob(ctx context.Context, jobID uuid.UUID, in translation.Input) error
}

type TranslateWorker struct {
	runner JobRunner
}

func NewTranslateWorker(runner JobRunner) *TranslateWorker {
	return &TranslateWorker{runner: runner}
}

// ProcessTask handles queue.TypeTranslateText. Failures that a retry cannot
// fix are wrapped with asynq.SkipRetry.
func (w *TranslateWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranslatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job ID: %w: %w", err, asynq.SkipRetry)
	}

	slog.Info("translating job", "job_id", jobID, "provider", payload.Provider, "to", payload.To)

	err = w.runner.RunJob(ctx, jobID, translation.Input{
		Provider: payload.Provider,
		Request: translator.Request{
			Text:   payload.Text,
			From:   translator.Language(payload.From),
			To:     translator.Language(payload.To),
			Config: payload.Config,
		},
	})
	if err == nil {
		return nil
	}
	if permanent(err) {
		return fmt.Errorf("translate job %s: %w: %w", jobID, err, asynq.SkipRetry)
	}
	return fmt.Errorf("translate job %s: %w", jobID, err)
}

func permanent(err error) bool {
	return errors.Is(err, translator.ErrEmptyText) ||
		errors.Is(err, translator.ErrUnsupportedLanguage) ||
		errors.Is(err, translator.ErrProviderNotFound) ||
		errors.Is(err, history.ErrNotFound) ||
		errors.Is(err, translation.ErrHistoryUnavailable)
}
