package divination

import (
	"fmt"
	"strings"
)

// Result holds the fields extracted from one divination reply.
// Every field is optional; empty ones are left out of Render.
type Result struct {
	Hexagram       string   `json:"hexagram,omitempty"`
	Source         string   `json:"source,omitempty"`
	Interpretation string   `json:"interpretation,omitempty"`
	Advice         []string `json:"advice,omitempty"`
	Comfort        string   `json:"comfort,omitempty"`
	Question       string   `json:"question,omitempty"`
}

// Usable reports whether the result carries a title or a body.
func (r Result) Usable() bool {
	return strings.TrimSpace(r.Hexagram) != "" || strings.TrimSpace(r.Interpretation) != ""
}

// Render lays the fields out in a fixed order separated by blank lines.
func (r Result) Render() string {
	var parts []string

	if title := strings.TrimSpace(r.Hexagram); title != "" {
		parts = append(parts, bracketTitle(title))
	}
	if v := strings.TrimSpace(r.Source); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(r.Interpretation); v != "" {
		parts = append(parts, v)
	}
	if advice := renderAdvice(r.Advice); advice != "" {
		parts = append(parts, advice)
	}
	if v := strings.TrimSpace(r.Comfort); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(r.Question); v != "" {
		parts = append(parts, v)
	}

	return strings.Join(parts, "\n\n")
}

func bracketTitle(title string) string {
	title = strings.TrimPrefix(title, "【")
	title = strings.TrimSuffix(title, "】")
	return "【" + strings.TrimSpace(title) + "】"
}

func renderAdvice(items []string) string {
	var lines []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, fmt.Sprintf("%d. %s", len(lines)+1, item))
		}
	}
	return strings.Join(lines, "\n")
}

// splitAdvice turns a block of advice text into items, dropping list markers.
func splitAdvice(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(stripListMarker(strings.TrimSpace(line)))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func stripListMarker(line string) string {
	for _, bullet := range []string{"- ", "* ", "• ", "·"} {
		if strings.HasPrefix(line, bullet) {
			return strings.TrimSpace(line[len(bullet):])
		}
	}

	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i > 3 {
		return line
	}
	rest := line[i:]
	for _, sep := range []string{".", "、", ")", "）", "．"} {
		if !strings.HasPrefix(rest, sep) {
			continue
		}
		after := rest[len(sep):]
		// "1.5倍" is a number, not a marker
		if sep == "." && after != "" && after[0] >= '0' && after[0] <= '9' {
			return line
		}
		return strings.TrimSpace(after)
	}
	return line
}
