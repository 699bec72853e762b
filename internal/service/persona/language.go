package persona

import (
	"strings"

	personaModel "github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
)

type languageKeywords struct {
	code     string
	display  string
	keywords []string
}

var languages = []languageKeywords{
	{"zh", "中文", []string{"中文", "汉语", "普通话", "国语", "华语", "粤语", "chinese", "mandarin", "cantonese"}},
	{"en", "English", []string{"英语", "英文", "english"}},
	{"ko", "한국어", []string{"韩语", "韩文", "韩国语", "朝鲜语", "korean", "한국어"}},
	{"ja", "日本語", []string{"日语", "日文", "日本语", "japanese", "日本語"}},
	{"fr", "Français", []string{"法语", "法文", "french", "français", "francais"}},
	{"es", "Español", []string{"西班牙语", "西语", "spanish", "español", "espanol"}},
	{"de", "Deutsch", []string{"德语", "德文", "german", "deutsch"}},
}

// InferLanguage maps a free-text language mention to a code. The earliest
// mention wins; bare codes like "en" are only accepted as the whole text.
func InferLanguage(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return personaModel.PrimaryLanguage
	}

	for _, lang := range languages {
		if lowered == lang.code || strings.HasPrefix(lowered, lang.code+"-") {
			return lang.code
		}
	}

	best, bestAt := "", -1
	for _, lang := range languages {
		for _, kw := range lang.keywords {
			if at := strings.Index(lowered, kw); at >= 0 && (bestAt < 0 || at < bestAt) {
				best, bestAt = lang.code, at
			}
		}
	}
	if best == "" {
		return personaModel.PrimaryLanguage
	}
	return best
}

// LanguageName returns the display name used in reply-language instructions.
func LanguageName(code string) string {
	for _, lang := range languages {
		if lang.code == code {
			return lang.display
		}
	}
	return code
}
