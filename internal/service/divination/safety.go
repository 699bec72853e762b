package divination

import "strings"

type phrase struct {
	forbidden string
	softer    string
}

// fatalistic lists absolute or doom phrasing a divination must not contain,
// longest first so that replacements do not overlap.
var fatalistic = []phrase{
	{"一定会", "可能会"},
	{"必然", "可能"},
	{"注定", "或许"},
	{"灾难", "考验"},
	{"inevitably", "possibly"},
	{"doomed", "challenged"},
}

// CheckCompliance returns the forbidden phrases found in text, in table order.
func CheckCompliance(text string) []string {
	lowered := strings.ToLower(text)
	var hits []string
	for _, p := range fatalistic {
		if strings.Contains(lowered, p.forbidden) {
			hits = append(hits, p.forbidden)
		}
	}
	return hits
}

// Soften rewrites every forbidden phrase into its tentative counterpart.
func Soften(text string) string {
	for _, p := range fatalistic {
		text = replaceFold(text, p.forbidden, p.softer)
	}
	return text
}

// replaceFold is strings.ReplaceAll with ASCII case folding on old.
func replaceFold(s, old, replacement string) string {
	if old == "" {
		return s
	}
	lowered := strings.ToLower(s)
	if len(lowered) != len(s) {
		return strings.ReplaceAll(s, old, replacement)
	}

	var b strings.Builder
	i := 0
	for {
		j := strings.Index(lowered[i:], old)
		if j < 0 {
			b.WriteString(s[i:])
			return b.String()
		}
		b.WriteString(s[i : i+j])
		b.WriteString(replacement)
		i += j + len(old)
	}
}
