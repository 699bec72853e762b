package intent

import "strings"

// Label 是关键词表命中的主题标签。
type Label string

const (
	Love    Label = "love"
	Career  Label = "career"
	Fortune Label = "fortune"
	Study   Label = "study"
	General Label = "general"
)

// Rule maps one label to its trigger substrings.
type Rule struct {
	Label    Label    `toml:"label"`
	Triggers []string `toml:"triggers"`
}

// Table is an ordered rule list; the first rule with a hit wins.
type Table []Rule

// Match returns the first label whose trigger occurs in text.
func (t Table) Match(text string) (Label, bool) {
	normalized := strings.ToLower(text)
	for _, rule := range t {
		if containsAny(normalized, rule.Triggers) {
			return rule.Label, true
		}
	}
	return "", false
}

// Triggers returns every trigger in the table, in order.
func (t Table) Triggers() []string {
	var out []string
	for _, rule := range t {
		out = append(out, rule.Triggers...)
	}
	return out
}

func containsAny(normalized string, triggers []string) bool {
	for _, trigger := range triggers {
		if trigger == "" {
			continue
		}
		if containsTrigger(normalized, strings.ToLower(trigger)) {
			return true
		}
	}
	return false
}

// containsTrigger 对纯 ASCII 单词要求词边界，避免 "no" 命中 "Bruno"；其余按子串匹配。
func containsTrigger(text, trigger string) bool {
	if !isASCIIWord(trigger) {
		return strings.Contains(text, trigger)
	}
	for offset := 0; ; {
		idx := strings.Index(text[offset:], trigger)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(trigger)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
}

func isASCIIWord(s string) bool {
	hasLetter := false
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
			hasLetter = true
		case b == ' ', b == '\'', b == '-':
		default:
			return false
		}
	}
	return hasLetter
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	return !isASCIILetter(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	return !isASCIILetter(text[i])
}

func isASCIILetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
