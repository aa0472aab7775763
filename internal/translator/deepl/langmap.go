package deepl

import "github.com/Ininit/OpenTranslate/internal/translator"

type langPair struct {
	caller  translator.Language
	backend string
}

var defaultPairs = []langPair{
	{"auto", "auto"},
	{"zh-CN", "ZH"},
	{"zh-TW", "ZH"},
	{"de", "DE"},
	{"en", "EN"},
	{"es", "ES"},
	{"fr", "FR"},
	{"it", "IT"},
	{"ja", "JA"},
	{"pt", "PT"},
	{"ru", "RU"},
}

// langMap translates between caller languages and DeepL codes.
//
// The reverse side is lossy: when several caller languages share one backend
// code the last pair in the list wins, so "ZH" always resolves to zh-TW. The
// backend gives no variant information to do better.
type langMap struct {
	order   []translator.Language
	forward map[translator.Language]string
	reverse map[string]translator.Language
}

func newLangMap(pairs []langPair) *langMap {
	m := &langMap{
		order:   make([]translator.Language, 0, len(pairs)),
		forward: make(map[translator.Language]string, len(pairs)),
		reverse: make(map[string]translator.Language, len(pairs)),
	}
	for _, p := range pairs {
		if _, seen := m.forward[p.caller]; !seen {
			m.order = append(m.order, p.caller)
		}
		m.forward[p.caller] = p.backend
		m.reverse[p.backend] = p.caller
	}
	return m
}

func (m *langMap) toBackend(lang translator.Language) (string, bool) {
	code, ok := m.forward[lang]
	return code, ok
}

func (m *langMap) toCaller(code string) (translator.Language, bool) {
	lang, ok := m.reverse[code]
	return lang, ok
}

// backendOrSelf maps lang, passing unknown languages through unchanged.
func (m *langMap) backendOrSelf(lang translator.Language) string {
	if code, ok := m.toBackend(lang); ok {
		return code
	}
	return string(lang)
}

func (m *langMap) supported() []translator.Language {
	out := make([]translator.Language, len(m.order))
	copy(out, m.order)
	return out
}
