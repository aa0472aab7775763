package handlers

import (
	"net/http"
	"strconv"

	"github.com/Ininit/OpenTranslate/internal/speech"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

type SpeechHandler struct {
	svc   TranslationService
	synth speech.Synthesizer
}

// NewSpeechHandler serves audio through synth when it is non-nil and
// provider speech URLs otherwise.
func NewSpeechHandler(svc TranslationService, synth speech.Synthesizer) *SpeechHandler {
	return &SpeechHandler{svc: svc, synth: synth}
}

type speechRequest struct {
	Provider string              `json:"provider"`
	Text     string              `json:"text"`
	Lang     translator.Language `json:"lang"`
	Voice    string              `json:"voice"`
	Speed    float64             `json:"speed"`
	Format   string              `json:"format"` // "url" or "audio"
}

func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, r, translator.ErrEmptyText)
		return
	}

	if req.Format == "audio" || (req.Format == "" && h.synth != nil) {
		h.audio(w, r, req)
		return
	}

	u, err := h.svc.Speak(r.Context(), req.Provider, req.Text, req.Lang)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

func (h *SpeechHandler) audio(w http.ResponseWriter, r *http.Request, req speechRequest) {
	if h.synth == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "speech synthesis is not configured"})
		return
	}

	res, err := h.synth.Synthesize(r.Context(), speech.SynthesisRequest{
		Input:    req.Text,
		Language: string(req.Lang),
		Voice:    req.Voice,
		Speed:    req.Speed,
	})
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Audio)))
	w.Header().Set("X-Speech-Backend", h.synth.Name())
	w.WriteHeader(http.StatusOK)
	w.Write(res.Audio)
}
