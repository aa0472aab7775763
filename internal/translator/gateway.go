package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Gateway routes translations to named providers with an optional fallback.
type Gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	fallbackProvider string
}

func NewGateway(defaultProvider, fallbackProvider string, providers ...Provider) *Gateway {
	g := &Gateway{
		providers:        make(map[string]Provider, len(providers)),
		defaultProvider:  normalizeName(defaultProvider),
		fallbackProvider: normalizeName(fallbackProvider),
	}
	for _, p := range providers {
		g.Register(p)
	}
	return g
}

func (g *Gateway) Register(p Provider) {
	g.providers[normalizeName(p.Name())] = p
}

func (g *Gateway) Provider(name string) (Provider, error) {
	name = normalizeName(name)
	if name == "" {
		name = g.defaultProvider
	}
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return p, nil
}

// Translate runs req on the named provider (default when empty). Protocol and
// transport failures fall back to the fallback provider once; invalid input does not.
func (g *Gateway) Translate(ctx context.Context, name string, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	p, err := g.Provider(name)
	if err != nil {
		return nil, err
	}

	res, err := translate(ctx, p, req)
	if err == nil || !g.shouldFallback(p, err) {
		return res, err
	}

	fb, fbErr := g.Provider(g.fallbackProvider)
	if fbErr != nil {
		return nil, err
	}
	slog.Warn("primary translator failed, trying fallback",
		"primary", p.Name(),
		"fallback", fb.Name(),
		"error", err,
	)
	return translate(ctx, fb, req)
}

func (g *Gateway) shouldFallback(p Provider, err error) bool {
	if g.fallbackProvider == "" || g.fallbackProvider == normalizeName(p.Name()) {
		return false
	}
	if errors.Is(err, ErrUnsupportedLanguage) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func translate(ctx context.Context, p Provider, req Request) (*Result, error) {
	if req.From == "" {
		req.From = LanguageAuto
	}
	// Unlisted codes are passed through; only a missing or "auto" target is rejected.
	if req.To == "" || req.To == LanguageAuto {
		return nil, fmt.Errorf("%w: target %q", ErrUnsupportedLanguage, req.To)
	}
	res, err := p.Translate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s translate: %w", p.Name(), err)
	}
	if res.Engine == "" {
		res.Engine = p.Name()
	}
	return res, nil
}

// Detect identifies the language of text with the named provider.
func (g *Gateway) Detect(ctx context.Context, name, text string) (Language, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	p, err := g.Provider(name)
	if err != nil {
		return "", err
	}
	d, ok := p.(Detector)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDetectUnavailable, p.Name())
	}
	lang, err := d.Detect(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%s detect: %w", p.Name(), err)
	}
	return lang, nil
}

// Speak builds a speech URL with the named provider.
func (g *Gateway) Speak(ctx context.Context, name, text string, lang Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	p, err := g.Provider(name)
	if err != nil {
		return "", err
	}
	s, ok := p.(Speaker)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSpeechUnavailable, p.Name())
	}
	return s.TextToSpeech(ctx, text, lang)
}

func (g *Gateway) ListProviders() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(g.providers))
	for _, p := range g.providers {
		_, detect := p.(Detector)
		_, speech := p.(Speaker)
		infos = append(infos, ProviderInfo{
			Name:      p.Name(),
			Languages: p.SupportedLanguages(),
			Detect:    detect,
			Speech:    speech,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
