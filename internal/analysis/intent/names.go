package intent

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	latinName = regexp.MustCompile(`^[\p{Latin}][\p{Latin}' \-]{1,39}$`)
	cjkName   = regexp.MustCompile(`^[\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}][\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}·・]{1,19}$`)
	spaces    = regexp.MustCompile(`\s+`)
)

// 按长度从长到短排列，保证 "我想和" 先于 "我想" 被剥离。
var requestPrefixes = []string{
	"i want to talk with", "i want to talk to", "i want to chat with", "let me talk to",
	"please summon", "i'd like", "i want", "summon", "talk to",
	"请帮我召唤", "帮我召唤", "我想和", "我想跟", "我想找", "我想要", "我要和", "我要跟",
	"请召唤", "我想", "我要", "召唤", "换成", "来个", "请",
}

var honorifics = []string{"mr. ", "mrs. ", "ms. ", "miss ", "dr. ", "sir ", "mr ", "mrs ", "ms ", "dr "}

var requestSuffixes = []string{"聊一聊", "聊天", "聊聊", "说话", "对话", "吧", "呀", "啊", "。", "！", "!", "？", "?", ".", "~", "～"}

const quoteChars = "\"'“”‘’「」『』《》【】"

// NormalizeName strips request phrases, honorifics, quotes and whitespace from a candidate name.
func (c *Classifier) NormalizeName(text string) string {
	name := strings.TrimSpace(spaces.ReplaceAllString(text, " "))
	for {
		before := name
		name = strings.Trim(name, quoteChars+" ")
		name = trimPrefixFold(name, requestPrefixes)
		name = trimPrefixFold(name, honorifics)
		name = trimSuffixes(name, requestSuffixes)
		name = strings.Trim(name, quoteChars+" ")
		if name == before {
			return name
		}
	}
}

// LooksLikeName is a permissive heuristic, not an identity check.
func (c *Classifier) LooksLikeName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > 40 {
		return false
	}
	if !latinName.MatchString(name) && !cjkName.MatchString(name) {
		return false
	}
	return !c.HasControlWord(name)
}

func trimPrefixFold(s string, prefixes []string) string {
	for _, prefix := range prefixes {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}

func trimSuffixes(s string, suffixes []string) string {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}
	return s
}

func toLower(s string) string {
	return strings.ToLower(s)
}
