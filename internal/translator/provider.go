package translator

import "context"

// Language is a caller-facing language tag such as "auto", "en" or "zh-CN".
type Language string

// LanguageAuto asks the provider to infer the source language.
const LanguageAuto Language = "auto"

// Provider abstracts a translation backend (DeepL, an LLM, etc.)
type Provider interface {
	Translate(ctx context.Context, req Request) (*Result, error)
	SupportedLanguages() []Language
	Name() string
}

// Detector is implemented by providers that can identify the language of a text.
type Detector interface {
	Detect(ctx context.Context, text string) (Language, error)
}

// Speaker is implemented by providers that can build a speech URL for a text.
type Speaker interface {
	TextToSpeech(ctx context.Context, text string, lang Language) (string, error)
}

// Request is the input for a single translation.
type Request struct {
	Text string   `json:"text"`
	From Language `json:"from"`
	To   Language `json:"to"`
	// Config holds provider specific settings, decoded by the provider itself.
	Config map[string]any `json:"config,omitempty"`
}

// Paragraphs is one side of a translation result.
type Paragraphs struct {
	Paragraphs []string `json:"paragraphs"`
	TTS        string   `json:"tts,omitempty"`
}

// Result is the output of a translation.
type Result struct {
	Engine string     `json:"engine"`
	Text   string     `json:"text"`
	From   Language   `json:"from"`
	To     Language   `json:"to"`
	Origin Paragraphs `json:"origin"`
	Trans  Paragraphs `json:"trans"`
}

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	Name      string     `json:"name"`
	Languages []Language `json:"languages"`
	Detect    bool       `json:"detect"`
	Speech    bool       `json:"speech"`
}

// Supports reports whether lang is in the provider's supported set.
func Supports(p Provider, lang Language) bool {
	for _, l := range p.SupportedLanguages() {
		if l == lang {
			return true
		}
	}
	return false
}
