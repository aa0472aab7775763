// Package llmtrans translates with a general purpose chat model.
package llmtrans

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Ininit/OpenTranslate/internal/configutil"
	"github.com/Ininit/OpenTranslate/internal/llm"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

const (
	translateSystem = `You are a translation engine. Translate the user's text %s into %s.
Keep line breaks. Reply with the translation only, without notes or quotes.`
	detectSystem = `Identify the language of the user's text. Reply with one code from this list and nothing else: %s.`
)

var paragraphSep = regexp.MustCompile(`\n+`)

type Config struct {
	Name        string // default: the llm provider name
	Model       string
	Temperature float64
}

// Translator is a translator.Provider that prompts an llm.Provider.
type Translator struct {
	llm         llm.Provider
	name        string
	model       string
	temperature float64
}

func New(p llm.Provider, cfg Config) *Translator {
	if cfg.Name == "" {
		cfg.Name = p.Name()
	}
	return &Translator{
		llm:         p,
		name:        cfg.Name,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (t *Translator) Name() string { return t.name }

func (t *Translator) SupportedLanguages() []translator.Language {
	return supportedLanguages()
}

type settings struct {
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

func (t *Translator) Translate(ctx context.Context, req translator.Request) (*translator.Result, error) {
	s := settings{Model: t.model, Temperature: t.temperature}
	if err := configutil.DecodeSettings(req.Config, &s); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", t.name, err)
	}

	from := req.From
	if from == "" {
		from = translator.LanguageAuto
	}
	source := "from " + languageName(from)
	if from == translator.LanguageAuto {
		source = "from its original language"
	}

	resp, err := t.llm.Complete(ctx, llm.CompletionRequest{
		Model:       s.Model,
		System:      fmt.Sprintf(translateSystem, source, languageName(req.To)),
		Prompt:      req.Text,
		Temperature: s.Temperature,
	})
	if err != nil {
		return nil, err
	}

	trans := []string{}
	if out := strings.TrimSpace(resp.Content); out != "" {
		trans = paragraphSep.Split(out, -1)
	}

	return &translator.Result{
		Engine: t.name,
		Text:   req.Text,
		From:   from,
		To:     req.To,
		Origin: translator.Paragraphs{Paragraphs: paragraphSep.Split(req.Text, -1)},
		Trans:  translator.Paragraphs{Paragraphs: trans},
	}, nil
}

// Detect asks the model for a language code and accepts only listed codes.
func (t *Translator) Detect(ctx context.Context, text string) (translator.Language, error) {
	codes := make([]string, 0, len(languageNames))
	for _, l := range supportedLanguages() {
		if l != translator.LanguageAuto {
			codes = append(codes, string(l))
		}
	}

	resp, err := t.llm.Complete(ctx, llm.CompletionRequest{
		Model:     t.model,
		System:    fmt.Sprintf(detectSystem, strings.Join(codes, ", ")),
		Prompt:    text,
		MaxTokens: 8,
	})
	if err != nil {
		return "", err
	}
	lang, ok := parseLanguage(resp.Content)
	if !ok {
		return "", fmt.Errorf("%w: model answered %q", translator.ErrDetectUnavailable, resp.Content)
	}
	return lang, nil
}

var (
	_ translator.Provider = (*Translator)(nil)
	_ translator.Detector = (*Translator)(nil)
)
