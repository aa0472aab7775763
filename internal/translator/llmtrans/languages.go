package llmtrans

import (
	"strings"

	"github.com/Ininit/OpenTranslate/internal/translator"
)

// languageNames lists the languages offered to callers, in display order.
// Prompts use the English name.
var languageNames = []struct {
	code translator.Language
	name string
}{
	{translator.LanguageAuto, ""},
	{"en", "English"},
	{"zh-CN", "Simplified Chinese"},
	{"zh-TW", "Traditional Chinese"},
	{"de", "German"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"nl", "Dutch"},
	{"pl", "Polish"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ar", "Arabic"},
}

func supportedLanguages() []translator.Language {
	out := make([]translator.Language, len(languageNames))
	for i, l := range languageNames {
		out[i] = l.code
	}
	return out
}

// languageName returns the prompt name of lang. Unlisted codes are used as is.
func languageName(lang translator.Language) string {
	for _, l := range languageNames {
		if l.code == lang {
			return l.name
		}
	}
	return string(lang)
}

// parseLanguage matches a model's answer against the listed codes, ignoring
// case, surrounding quotes and punctuation.
func parseLanguage(answer string) (translator.Language, bool) {
	code := strings.Trim(strings.TrimSpace(answer), "\"'`.")
	if code == "" {
		return "", false
	}
	for _, l := range languageNames {
		if l.code == translator.LanguageAuto {
			continue
		}
		if strings.EqualFold(string(l.code), code) || strings.EqualFold(l.name, code) {
			return l.code, true
		}
	}
	return "", false
}
