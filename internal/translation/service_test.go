package translation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Ininit/OpenTranslate/internal/cache"
	"github.com/Ininit/OpenTranslate/internal/history"
	"github.com/Ininit/OpenTranslate/internal/models"
	"github.com/Ininit/OpenTranslate/internal/queue"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

type stubProvider struct {
	calls int
	err   error
}

func (p *stubProvider) Name() string                              { return "deepl" }
func (p *stubProvider) SupportedLanguages() []translator.Language { return []translator.Language{"auto", "en", "de"} }

func (p *stubProvider) Translate(_ context.Context, req translator.Request) (*translator.Result, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &translator.Result{
		Text:  req.Text,
		From:  "en",
		To:    req.To,
		Trans: translator.Paragraphs{Paragraphs: []string{strings.ToUpper(req.Text)}},
	}, nil
}

type memCache struct {
	data    map[string][]byte
	failGet bool
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Key(parts ...string) string { return strings.Join(parts, "|") }

func (c *memCache) Get(_ context.Context, key string, dest any) error {
	if c.failGet {
		return errors.New("connection refused")
	}
	v, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(v, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = data
	return nil
}

type memHistory struct {
	recorded  int
	rows      map[uuid.UUID]*models.Translation
	createErr error
}

func newMemHistory() *memHistory { return &memHistory{rows: map[uuid.UUID]*models.Translation{}} }

func (h *memHistory) Record(context.Context, string, translator.Request, *translator.Result) (uuid.UUID, error) {
	h.recorded++
	return uuid.New(), nil
}

func (h *memHistory) CreatePending(_ context.Context, jobID uuid.UUID, provider string, req translator.Request) error {
	if h.createErr != nil {
		return h.createErr
	}
	id := jobID
	h.rows[jobID] = &models.Translation{JobID: &id, Provider: provider, SourceText: req.Text, Status: models.TranslationPending}
	return nil
}

func (h *memHistory) Complete(_ context.Context, jobID uuid.UUID, res *translator.Result) error {
	row, ok := h.rows[jobID]
	if !ok {
		return history.ErrNotFound
	}
	row.Status = models.TranslationCompleted
	row.Result, _ = json.Marshal(res)
	return nil
}

func (h *memHistory) Fail(_ context.Context, jobID uuid.UUID, reason string) error {
	row, ok := h.rows[jobID]
	if !ok {
		return history.ErrNotFound
	}
	row.Status = models.TranslationFailed
	row.Error = reason
	return nil
}

func (h *memHistory) GetByJob(_ context.Context, jobID uuid.UUID) (*models.Translation, error) {
	row, ok := h.rows[jobID]
	if !ok {
		return nil, history.ErrNotFound
	}
	return row, nil
}

func (h *memHistory) List(context.Context, int, int) ([]models.Translation, error) {
	out := []models.Translation{}
	for _, r := range h.rows {
		out = append(out, *r)
	}
	return out, nil
}

type memQueue struct {
	payloads []queue.TranslatePayload
	err      error
}

func (q *memQueue) EnqueueTranslate(_ context.Context, p queue.TranslatePayload) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, p)
	return nil
}

func newTestService(p *stubProvider, opts Options) *Service {
	return NewService(translator.NewGateway("deepl", "", p), opts)
}

func TestTranslateCachesResults(t *testing.T) {
	p := &stubProvider{}
	c := newMemCache()
	h := newMemHistory()
	s := newTestService(p, Options{Cache: c, History: h})

	in := Input{Request: translator.Request{Text: "hello", To: "de"}}
	first, err := s.Translate(context.Background(), in)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if first.Cached || first.Engine != "deepl" {
		t.Fatalf("unexpected first output %+v", first)
	}

	second, err := s.Translate(context.Background(), in)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !second.Cached || second.Trans.Paragraphs[0] != "HELLO" {
		t.Fatalf("expected cached output, got %+v", second)
	}
	if p.calls != 1 {
		t.Fatalf("provider called %d times, want 1", p.calls)
	}
	if h.recorded != 1 {
		t.Fatalf("history recorded %d times, want 1", h.recorded)
	}
}

func TestTranslateCacheKeyIncludesConfig(t *testing.T) {
	p := &stubProvider{}
	s := newTestService(p, Options{Cache: newMemCache()})

	for _, cfg := range []map[string]any{nil, {"model": "gpt-4o"}} {
		if _, err := s.Translate(context.Background(), Input{Request: translator.Request{Text: "hello", To: "de", Config: cfg}}); err != nil {
			t.Fatalf("translate: %v", err)
		}
	}
	if p.calls != 2 {
		t.Fatalf("provider called %d times, want 2", p.calls)
	}
}

func TestTranslateCacheFailureIsNotFatal(t *testing.T) {
	p := &stubProvider{}
	c := newMemCache()
	c.failGet = true
	s := newTestService(p, Options{Cache: c})

	out, err := s.Translate(context.Background(), Input{Request: translator.Request{Text: "hello", To: "de"}})
	if err != nil || out.Cached {
		t.Fatalf("expected uncached translation, got %+v, %v", out, err)
	}
}

func TestTranslatePropagatesProviderErrors(t *testing.T) {
	p := &stubProvider{err: &translator.ProtocolError{Provider: "deepl", Method: "LMT_handle_jobs", Code: 1, Message: "x"}}
	h := newMemHistory()
	s := newTestService(p, Options{History: h})

	_, err := s.Translate(context.Background(), Input{Request: translator.Request{Text: "hello", To: "de"}})
	if !errors.Is(err, translator.ErrAPIServer) {
		t.Fatalf("expected API_SERVER_ERROR, got %v", err)
	}
	if h.recorded != 0 {
		t.Fatal("failed translations must not be recorded")
	}
}

func TestOutputJSONIsFlat(t *testing.T) {
	data, err := json.Marshal(Output{Result: translator.Result{Engine: "deepl"}, Cached: true})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	if m["engine"] != "deepl" || m["cached"] != true {
		t.Fatalf("unexpected json %s", data)
	}
}

func TestJobLifecycle(t *testing.T) {
	p := &stubProvider{}
	h := newMemHistory()
	q := &memQueue{}
	s := newTestService(p, Options{History: h, Queue: q})

	in := Input{Provider: "deepl", Request: translator.Request{Text: "hello", From: "en", To: "de", Config: map[string]any{"jsonrpc": "2.0"}}}
	jobID, err := s.Enqueue(context.Background(), in)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(q.payloads) != 1 || q.payloads[0].JobID != jobID.String() || q.payloads[0].Config["jsonrpc"] != "2.0" {
		t.Fatalf("unexpected payloads %+v", q.payloads)
	}
	job, err := s.Job(context.Background(), jobID)
	if err != nil || job.Status != models.TranslationPending {
		t.Fatalf("expected pending job, got %+v, %v", job, err)
	}

	if err := s.RunJob(context.Background(), jobID, in); err != nil {
		t.Fatalf("run job: %v", err)
	}
	job, _ = s.Job(context.Background(), jobID)
	if job.Status != models.TranslationCompleted || !strings.Contains(string(job.Result), "HELLO") {
		t.Fatalf("expected completed job, got %+v", job)
	}
}

func TestRunJobFailureMarksRow(t *testing.T) {
	p := &stubProvider{err: errors.New("backend down")}
	h := newMemHistory()
	s := newTestService(p, Options{History: h, Queue: &memQueue{}})

	in := Input{Request: translator.Request{Text: "hello", To: "de"}}
	jobID, err := s.Enqueue(context.Background(), in)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := s.RunJob(context.Background(), jobID, in); err == nil {
		t.Fatal("expected job error")
	}
	job, _ := s.Job(context.Background(), jobID)
	if job.Status != models.TranslationFailed || !strings.Contains(job.Error, "backend down") {
		t.Fatalf("expected failed job, got %+v", job)
	}
}

func TestEnqueueFailureMarksRow(t *testing.T) {
	h := newMemHistory()
	s := newTestService(&stubProvider{}, Options{History: h, Queue: &memQueue{err: errors.New("redis down")}})

	if _, err := s.Enqueue(context.Background(), Input{Request: translator.Request{Text: "hello", To: "de"}}); err == nil {
		t.Fatal("expected enqueue error")
	}
	for _, row := range h.rows {
		if row.Status != models.TranslationFailed {
			t.Fatalf("row left %s", row.Status)
		}
	}
}

func TestEnqueueValidation(t *testing.T) {
	s := newTestService(&stubProvider{}, Options{})
	if _, err := s.Enqueue(context.Background(), Input{Request: translator.Request{Text: "hi", To: "de"}}); !errors.Is(err, ErrJobsUnavailable) {
		t.Fatalf("expected ErrJobsUnavailable, got %v", err)
	}

	s = newTestService(&stubProvider{}, Options{History: newMemHistory(), Queue: &memQueue{}})
	if _, err := s.Enqueue(context.Background(), Input{Request: translator.Request{Text: " ", To: "de"}}); !errors.Is(err, translator.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := s.Enqueue(context.Background(), Input{Provider: "bing", Request: translator.Request{Text: "hi", To: "de"}}); !errors.Is(err, translator.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
	if _, err := s.History(context.Background(), 10, 0); err != nil {
		t.Fatalf("history: %v", err)
	}
}

func TestLanguages(t *testing.T) {
	s := newTestService(&stubProvider{}, Options{})
	langs, err := s.Languages("DeepL")
	if err != nil || len(langs) != 3 {
		t.Fatalf("languages = %v, %v", langs, err)
	}
	if _, err := s.Languages("bing"); !errors.Is(err, translator.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}
