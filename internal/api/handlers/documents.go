package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Ininit/OpenTranslate/internal/translation"
	"github.com/Ininit/OpenTranslate/internal/translator"
	"github.com/Ininit/OpenTranslate/pkg/chunker"
	"github.com/Ininit/OpenTranslate/pkg/textextract"
)

type DocumentHandler struct {
	svc      TranslationService
	maxBytes int64
}

func NewDocumentHandler(svc TranslationService, maxUploadMB int64) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &DocumentHandler{svc: svc, maxBytes: maxUploadMB << 20}
}

type documentResponse struct {
	Filename string                `json:"filename"`
	Type     string                `json:"type"`
	Pages    int                   `json:"pages"`
	Chunks   []*translation.Output `json:"chunks"`
}

// Translate extracts the text of an uploaded PDF, DOCX or TXT file and
// translates it chunk by chunk. Form fields: file, provider, from, to.
func (h *DocumentHandler) Translate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read file: " + err.Error()})
		return
	}

	fileType := textextract.TypeOf(header.Filename, header.Header.Get("Content-Type"))
	doc, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), fileType)
	if err != nil {
		if errors.Is(err, textextract.ErrUnsupportedType) {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(doc.Content) == "" {
		writeError(w, r, translator.ErrEmptyText)
		return
	}

	resp := documentResponse{Filename: header.Filename, Type: fileType, Pages: doc.Pages}
	for _, chunk := range chunker.Split(doc.Content, chunker.DefaultMaxRunes) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		out, err := h.svc.Translate(r.Context(), translation.Input{
			Provider: r.FormValue("provider"),
			Request: translator.Request{
				Text: chunk,
				From: translator.Language(r.FormValue("from")),
				To:   translator.Language(r.FormValue("to")),
			},
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Chunks = append(resp.Chunks, out)
	}

	writeJSON(w, http.StatusOK, resp)
}
