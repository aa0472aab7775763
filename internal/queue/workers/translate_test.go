package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/Ininit/OpenTranslate/internal/queue"
	"github.com/Ininit/OpenTranslate/internal/translation"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

type fakeRunner struct {
	jobID uuid.UUID
	in    translation.Input
	err   error
}

func (f *fakeRunner) RunJob(_ context.Context, jobID uuid.UUID, in translation.Input) error {
	f.jobID = jobID
	f.in = in
	return f.err
}

func task(t *testing.T, p queue.TranslatePayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	return asynq.NewTask(queue.TypeTranslateText, data)
}

func TestTranslateWorker(t *testing.T) {
	r := &fakeRunner{}
	w := NewTranslateWorker(r)
	id := uuid.New()

	err := w.ProcessTask(context.Background(), task(t, queue.TranslatePayload{
		JobID: id.String(), Provider: "deepl", Text: "Hi", From: "en", To: "de",
		Config: map[string]any{"jsonrpc": "2.0"},
	}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if r.jobID != id || r.in.Provider != "deepl" || r.in.Request.To != "de" || r.in.Request.Config["jsonrpc"] != "2.0" {
		t.Fatalf("unexpected job %s %+v", r.jobID, r.in)
	}
}

func TestTranslateWorkerRetryPolicy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		skip bool
	}{
		{"backend error retries", &translator.ProtocolError{Provider: "deepl", Method: "LMT_handle_jobs", Code: 1, Message: "busy"}, false},
		{"transport error retries", errors.New("connection reset"), false},
		{"unsupported language is final", translator.ErrUnsupportedLanguage, true},
		{"unknown provider is final", translator.ErrProviderNotFound, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewTranslateWorker(&fakeRunner{err: tt.err})
			err := w.ProcessTask(context.Background(), task(t, queue.TranslatePayload{JobID: uuid.NewString(), Text: "Hi", To: "de"}))
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if got := errors.Is(err, asynq.SkipRetry); got != tt.skip {
				t.Fatalf("skip retry = %v, want %v", got, tt.skip)
			}
		})
	}
}

func TestTranslateWorkerBadPayload(t *testing.T) {
	w := NewTranslateWorker(&fakeRunner{})
	for _, payload := range [][]byte{[]byte("{"), []byte(`{"job_id":"nope"}`)} {
		err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeTranslateText, payload))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("%s: expected SkipRetry, got %v", payload, err)
		}
	}
}
