package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Ininit/OpenTranslate/internal/models"
	"github.com/Ininit/OpenTranslate/internal/translation"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

// TranslationService is the part of *translation.Service the handlers use.
type TranslationService interface {
	Translate(ctx context.Context, in translation.Input) (*translation.Output, error)
	Detect(ctx context.Context, provider, text string) (translator.Language, error)
	Speak(ctx context.Context, provider, text string, lang translator.Language) (string, error)
	Providers() []translator.ProviderInfo
	Languages(provider string) ([]translator.Language, error)
	Enqueue(ctx context.Context, in translation.Input) (uuid.UUID, error)
	Job(ctx context.Context, jobID uuid.UUID) (*models.Translation, error)
	History(ctx context.Context, limit, offset int) ([]models.Translation, error)
}

type translateRequest struct {
	Provider string              `json:"provider"`
	Text     string              `json:"text"`
	From     translator.Language `json:"from"`
	To       translator.Language `json:"to"`
	Config   map[string]any      `json:"config"`
}

func (req translateRequest) input() translation.Input {
	return translation.Input{
		Provider: req.Provider,
		Request: translator.Request{
			Text:   req.Text,
			From:   req.From,
			To:     req.To,
			Config: req.Config,
		},
	}
}

type TranslateHandler struct {
	svc TranslationService
}

func NewTranslateHandler(svc TranslationService) *TranslateHandler {
	return &TranslateHandler{svc: svc}
}

func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.Translate(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *TranslateHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		Text     string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	lang, err := h.svc.Detect(r.Context(), req.Provider, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"language": lang})
}

func (h *TranslateHandler) Providers(w http.ResponseWriter, r *http.Request) {
	providers := h.svc.Providers()
	writeJSON(w, http.StatusOK, map[string]any{"providers": providers, "count": len(providers)})
}

func (h *TranslateHandler) Languages(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	langs, err := h.svc.Languages(name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"provider": name, "languages": langs})
}
