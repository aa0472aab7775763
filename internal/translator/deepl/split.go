package deepl

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Ininit/OpenTranslate/internal/translator"
)

type splitParams struct {
	Texts []string   `json:"texts"`
	Lang  langParams `json:"lang"`
}

// splitOutcome is the usable part of a split response. ok is false when the
// result carried no detected language, in which case no segmentation is
// available.
type splitOutcome struct {
	ok        bool
	lang      string
	sentences []string
}

func (t *Translator) split(ctx context.Context, id int64, s settings, text string, from translator.Language) (splitOutcome, error) {
	raw, err := t.call(ctx, t.splitHeader(s), rpcRequest{
		JSONRPC: s.JSONRPC,
		ID:      id,
		Method:  methodSplit,
		Params: splitParams{
			Texts: []string{text},
			Lang: langParams{
				LangUserSelected:   langs.backendOrSelf(from),
				UserPreferredLangs: userPreferredLangs,
			},
		},
	})
	if err != nil {
		return splitOutcome{}, err
	}

	out := parseSplit(raw)
	slog.Debug("deepl split",
		"id", id,
		"detected", out.lang,
		"sentences", len(out.sentences),
		"segmented", out.ok,
	)
	return out, nil
}

func parseSplit(raw json.RawMessage) splitOutcome {
	m := fields(raw)
	langRaw, ok := m["lang"]
	if !ok {
		return splitOutcome{}
	}
	var lang string
	if err := json.Unmarshal(langRaw, &lang); err != nil {
		return splitOutcome{}
	}
	return splitOutcome{
		ok:        true,
		lang:      lang,
		sentences: parseSentences(m["splitted_texts"]),
	}
}

// parseSentences accepts both a flat list and the per-input nested list the
// backend returns for multi-text requests, flattening the latter.
func parseSentences(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat
	}
	var nested [][]string
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil
	}
	var out []string
	for _, texts := range nested {
		out = append(out, texts...)
	}
	return out
}
