// Package deepl speaks the JSON-RPC protocol of the DeepL web translator.
//
// A translation takes two sequential round-trips: LMT_split_into_sentences
// segments the text and detects its language, then LMT_handle_jobs translates
// one job per sentence with the neighbouring sentences as context.
package deepl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ininit/OpenTranslate/internal/configutil"
	"github.com/Ininit/OpenTranslate/internal/speech"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

const (
	providerName = "deepl"

	DefaultEndpoint = "https://www2.deepl.com/jsonrpc"
	DefaultLMTBID   = "58c81157-360a-47f5-bdfb-40809d9645e9|d2551197821fc62516f3164c867a96f1"
	DefaultUA       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.149 Safari/537.36"

	defaultJSONRPC = "2.0"
)

var langs = newLangMap(defaultPairs)

var paragraphSep = regexp.MustCompile(`\n+`)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SpeechFunc builds a playback URL for text spoken in lang.
type SpeechFunc func(ctx context.Context, text string, lang translator.Language) (string, error)

type Config struct {
	Endpoint  string        // default: DefaultEndpoint
	LMTBID    string        // session cookie value, default: DefaultLMTBID
	UserAgent string        // default: DefaultUA
	Timeout   time.Duration // default: 30s, ignored when Client is set
	Client    Doer          // default: http.Client with Timeout
	Speech    SpeechFunc    // default: TextToSpeech
}

// Translator is a translator.Provider backed by DeepL. It keeps no per-call
// state and is safe for concurrent use.
type Translator struct {
	endpoint  string
	lmtbid    string
	userAgent string
	client    Doer
	speech    SpeechFunc
	now       func() time.Time
}

func New(cfg Config) *Translator {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.LMTBID == "" {
		cfg.LMTBID = DefaultLMTBID
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUA
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	t := &Translator{
		endpoint:  cfg.Endpoint,
		lmtbid:    cfg.LMTBID,
		userAgent: cfg.UserAgent,
		client:    cfg.Client,
		speech:    cfg.Speech,
		now:       time.Now,
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: cfg.Timeout}
	}
	if t.speech == nil {
		t.speech = t.TextToSpeech
	}
	return t
}

func (t *Translator) Name() string { return providerName }

// SupportedLanguages returns the caller languages in mapping order, "auto" first.
func (t *Translator) SupportedLanguages() []translator.Language {
	return langs.supported()
}

// settings are the per-request options accepted in translator.Request.Config.
type settings struct {
	JSONRPC string `mapstructure:"jsonrpc"`
	LMTBID  string `mapstructure:"lmtbid"`
}

func (t *Translator) decodeSettings(cfg map[string]any) (settings, error) {
	s := settings{JSONRPC: defaultJSONRPC, LMTBID: t.lmtbid}
	if err := configutil.DecodeSettings(cfg, &s); err != nil {
		return settings{}, fmt.Errorf("decode deepl config: %w", err)
	}
	if s.JSONRPC == "" {
		s.JSONRPC = defaultJSONRPC
	}
	if s.LMTBID == "" {
		s.LMTBID = t.lmtbid
	}
	return s, nil
}

func (t *Translator) splitHeader(s settings) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "text/plain")
	h.Set("Cookie", "LMTBID="+s.LMTBID)
	h.Set("User-Agent", t.userAgent)
	h.Set("Origin", "https://www.deepl.com")
	h.Set("Referer", "https://www.deepl.com/translator")
	h.Set("Sec-Fetch-Site", "same-site")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Authority", "www2.deepl.com")
	h.Set("Dnt", "1")
	return h
}

func (t *Translator) translateHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "text/plain")
	return h
}

// Translate splits req.Text, translates every sentence and assembles the
// result. The split and translate calls use consecutive request ids.
func (t *Translator) Translate(ctx context.Context, req translator.Request) (*translator.Result, error) {
	s, err := t.decodeSettings(req.Config)
	if err != nil {
		return nil, err
	}
	from := req.From
	if from == "" {
		from = translator.LanguageAuto
	}

	id := newRequestID()
	split, err := t.split(ctx, id, s, req.Text, from)
	if err != nil {
		return nil, err
	}

	sentences := []string{req.Text}
	if split.ok {
		if lang, ok := langs.toCaller(split.lang); ok {
			from = lang
		}
		if len(split.sentences) > 0 {
			sentences = split.sentences
		}
	}

	translations, err := t.handleJobs(ctx, id+1, s, buildJobs(sentences), from, req.To)
	if err != nil {
		return nil, err
	}

	return t.assemble(ctx, req.Text, from, req.To, translations), nil
}

func (t *Translator) assemble(ctx context.Context, text string, from, to translator.Language, translations []string) *translator.Result {
	var originTTS, transTTS string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		originTTS = t.speechURL(gctx, text, from)
		return nil
	})
	g.Go(func() error {
		transTTS = t.speechURL(gctx, strings.Join(translations, ""), to)
		return nil
	})
	_ = g.Wait()

	return &translator.Result{
		Engine: providerName,
		Text:   text,
		From:   from,
		To:     to,
		Origin: translator.Paragraphs{
			Paragraphs: paragraphSep.Split(text, -1),
			TTS:        originTTS,
		},
		Trans: translator.Paragraphs{
			Paragraphs: translations,
			TTS:        transTTS,
		},
	}
}

// speechURL never fails: a builder error means no URL.
func (t *Translator) speechURL(ctx context.Context, text string, lang translator.Language) string {
	u, err := t.speech(ctx, text, lang)
	if err != nil {
		slog.Warn("speech url unavailable", "provider", providerName, "lang", lang, "error", err)
		return ""
	}
	return u
}

// TextToSpeech links to Baidu's speech endpoint. "auto" is spoken as zh-CN.
func (t *Translator) TextToSpeech(_ context.Context, text string, lang translator.Language) (string, error) {
	if lang == translator.LanguageAuto {
		lang = "zh-CN"
	}
	lan, ok := langs.toBackend(lang)
	if !ok {
		lan = "zh"
	}
	return speech.BaiduURL(lan, text), nil
}

// Detect runs only the split phase and reports the language DeepL detected.
func (t *Translator) Detect(ctx context.Context, text string) (translator.Language, error) {
	s, err := t.decodeSettings(nil)
	if err != nil {
		return "", err
	}
	split, err := t.split(ctx, newRequestID(), s, text, translator.LanguageAuto)
	if err != nil {
		return "", err
	}
	if !split.ok {
		return "", translator.ErrDetectUnavailable
	}
	lang, ok := langs.toCaller(split.lang)
	if !ok || lang == translator.LanguageAuto {
		return "", fmt.Errorf("%w: backend reported %q", translator.ErrDetectUnavailable, split.lang)
	}
	return lang, nil
}

var (
	_ translator.Provider = (*Translator)(nil)
	_ translator.Detector = (*Translator)(nil)
	_ translator.Speaker  = (*Translator)(nil)
)
