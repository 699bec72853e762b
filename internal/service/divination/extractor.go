package divination

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/analysis/textscan"
)

// Method names the strategy that produced a rendered message.
type Method string

const (
	MethodTags        Method = "tags"
	MethodJSON        Method = "json"
	MethodPassthrough Method = "passthrough"
)

// Strategy parses a raw reply into a Result. ok=false hands over to the next one.
type Strategy interface {
	Name() Method
	Parse(raw string) (Result, bool)
}

// Extractor runs its strategies in order and falls back to the raw text.
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewExtractor returns the tag -> JSON chain.
func NewExtractor(logger *zap.Logger) *Extractor {
	return NewExtractorWith(logger, TagStrategy{}, JSONStrategy{})
}

// NewExtractorWith builds a chain from explicit strategies.
func NewExtractorWith(logger *zap.Logger, strategies ...Strategy) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract renders raw through the first strategy that succeeds. It never fails:
// when nothing matches, or a strategy panics, raw comes back unmodified.
func (e *Extractor) Extract(raw string) (string, Method) {
	for _, strategy := range e.strategies {
		result, ok := e.try(strategy, raw)
		if !ok {
			continue
		}
		rendered := result.Render()
		if strings.TrimSpace(rendered) == "" {
			continue
		}
		return rendered, strategy.Name()
	}
	return raw, MethodPassthrough
}

func (e *Extractor) try(strategy Strategy, raw string) (result Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extract strategy panicked",
				zap.String("strategy", string(strategy.Name())),
				zap.Any("panic", r),
			)
			result, ok = Result{}, false
		}
	}()

	result, ok = strategy.Parse(raw)
	return result, ok && result.Usable()
}

var (
	tagPatterns = map[string]*regexp.Regexp{}
	tagFields   = []string{"hexagram", "source", "interpretation", "advice", "comfort", "question"}
	itemPattern = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>(.*?)</item\s*>`)
	anyTag      = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9_-]*(?:\s[^>]*)?>`)
)

func init() {
	for _, field := range tagFields {
		tagPatterns[field] = regexp.MustCompile(`(?is)<` + field + `(?:\s[^>]*)?>(.*?)</` + field + `\s*>`)
	}
}

// TagStrategy reads <field>...</field> regions.
type TagStrategy struct{}

// Name implements Strategy.
func (TagStrategy) Name() Method { return MethodTags }

// Parse implements Strategy.
func (TagStrategy) Parse(raw string) (Result, bool) {
	var result Result
	result.Hexagram = tagText(raw, "hexagram")
	result.Source = tagText(raw, "source")
	result.Interpretation = tagText(raw, "interpretation")
	result.Comfort = tagText(raw, "comfort")
	result.Question = tagText(raw, "question")

	if m := tagPatterns["advice"].FindStringSubmatch(raw); m != nil {
		block := m[1]
		if items := itemPattern.FindAllStringSubmatch(block, -1); len(items) > 0 {
			for _, item := range items {
				result.Advice = append(result.Advice, stripListMarker(cleanTagText(item[1])))
			}
		} else {
			result.Advice = splitAdvice(cleanTagText(block))
		}
	}

	return result, result.Usable()
}

func tagText(raw, field string) string {
	m := tagPatterns[field].FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return cleanTagText(m[1])
}

// cleanTagText trims the region, drops nested markup and unescapes literal \n.
func cleanTagText(s string) string {
	s = anyTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\n`, "\n")
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// JSONStrategy reads the first brace-delimited block as a key/value object.
type JSONStrategy struct{}

// Name implements Strategy.
func (JSONStrategy) Name() Method { return MethodJSON }

var jsonAliases = map[string][]string{
	"hexagram":       {"hexagram", "title", "gua", "hexagram_name", "卦象", "卦名"},
	"source":         {"source", "citation", "original_text", "原文", "出处"},
	"interpretation": {"interpretation", "explanation", "meaning", "content", "解读", "解释"},
	"advice":         {"advice", "suggestions", "suggestion", "建议"},
	"comfort":        {"comfort", "encouragement", "安慰", "鼓励"},
	"question":       {"question", "closing_question", "follow_up", "提问", "问题"},
}

// Parse implements Strategy.
func (JSONStrategy) Parse(raw string) (Result, bool) {
	block, ok := textscan.FirstBraceBlock(raw)
	if !ok {
		return Result{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return Result{}, false
	}

	lowered := make(map[string]any, len(fields))
	for k, v := range fields {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	lookup := func(field string) (any, bool) {
		for _, alias := range jsonAliases[field] {
			if v, ok := lowered[alias]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}

	var result Result
	for field, dst := range map[string]*string{
		"hexagram":       &result.Hexagram,
		"source":         &result.Source,
		"interpretation": &result.Interpretation,
		"comfort":        &result.Comfort,
		"question":       &result.Question,
	} {
		if v, ok := lookup(field); ok {
			*dst = strings.TrimSpace(flatten(v))
		}
	}

	if v, ok := lookup("advice"); ok {
		switch val := v.(type) {
		case []any:
			for _, item := range val {
				result.Advice = append(result.Advice, stripListMarker(strings.TrimSpace(flatten(item))))
			}
		default:
			result.Advice = splitAdvice(flatten(val))
		}
	}

	return result, result.Usable()
}

// flatten turns a decoded JSON value into display text; lists become lines.
func flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(flatten(item)); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := strings.TrimSpace(flatten(val[k])); s != "" {
				lines = append(lines, k+"："+s)
			}
		}
		return strings.Join(lines, "\n")
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
