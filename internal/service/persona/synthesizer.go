// Package persona synthesizes speech-style personas and generates in-character replies.
package persona

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zhouzirui/idol-oracle/backend/internal/analysis/intent"
	"github.com/zhouzirui/idol-oracle/backend/internal/analysis/textscan"
	personaModel "github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
)

// ErrInvalidName marks a candidate that cannot be treated as a person name.
var ErrInvalidName = errors.New("invalid persona name")

const maxNameRunes = 40

// Synthesizer turns a requested name into a persona record.
type Synthesizer struct {
	completer  llm.Completer
	classifier *intent.Classifier
	group      singleflight.Group
	logger     *zap.Logger
}

// NewSynthesizer creates a synthesizer. A nil classifier uses the default tables.
func NewSynthesizer(completer llm.Completer, classifier *intent.Classifier, logger *zap.Logger) *Synthesizer {
	if classifier == nil {
		classifier = intent.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		completer:  completer,
		classifier: classifier,
		logger:     logger.Named("persona"),
	}
}

// Candidate normalizes text into a requestable name or returns ErrInvalidName.
func (s *Synthesizer) Candidate(text string) (string, error) {
	name := s.classifier.NormalizeName(text)
	switch {
	case name == "":
		return "", ErrInvalidName
	case utf8.RuneCountInString(name) > maxNameRunes:
		return "", ErrInvalidName
	case s.classifier.HasControlWord(name):
		return "", ErrInvalidName
	}
	return name, nil
}

// Synthesize builds a persona for text. Only ErrInvalidName is returned;
// collaborator failures yield personaModel.Default so the conversation proceeds.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (personaModel.Persona, error) {
	name, err := s.Candidate(text)
	if err != nil {
		return personaModel.Persona{}, err
	}

	key := strings.ToLower(name)
	// Coalesced callers share one call, so it must not die with the first caller.
	shared := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.synthesize(shared, name), nil
	})
	return v.(personaModel.Persona), nil
}

func (s *Synthesizer) synthesize(ctx context.Context, name string) personaModel.Persona {
	text, err := synthesisPrompt.Render(map[string]any{"name": name})
	if err != nil {
		s.logger.Error("render synthesis prompt", zap.Error(err))
		return personaModel.Default(name)
	}

	raw, err := s.completer.Complete(ctx, text)
	if err != nil {
		s.logger.Warn("persona synthesis failed, using default", zap.String("name", name), zap.Error(err))
		return personaModel.Default(name)
	}

	p, ok := Parse(name, raw)
	if !ok {
		s.logger.Warn("persona response unparsable, using default", zap.String("name", name))
		return personaModel.Default(name)
	}

	s.logger.Info("persona synthesized", zap.String("name", name), zap.String("language", p.DefaultLanguage))
	return p
}

type bucket string

const (
	bucketLanguage   bucket = "language"
	bucketPace       bucket = "pace"
	bucketTone       bucket = "tone"
	bucketEmotion    bucket = "emotion"
	bucketPattern    bucket = "pattern"
	bucketAvoid      bucket = "avoid"
	bucketAllowed    bucket = "allowed"
	bucketDisallowed bucket = "disallowed"
	bucketOpening    bucket = "opening"
)

var labelAliases = map[string]bucket{
	"母语": bucketLanguage, "语言": bucketLanguage, "mother tongue": bucketLanguage, "language": bucketLanguage, "native language": bucketLanguage,
	"语速": bucketPace, "pace": bucketPace,
	"语气": bucketTone, "tone": bucketTone,
	"情绪表达": bucketEmotion, "emotional expression": bucketEmotion, "emotion": bucketEmotion,
	"回应习惯": bucketPattern, "response pattern": bucketPattern, "habitual response": bucketPattern,
	"避免风格": bucketAvoid, "avoided styles": bucketAvoid, "avoid": bucketAvoid,
	"可参考范围": bucketAllowed, "allowed scope": bucketAllowed, "allowed references": bucketAllowed,
	"禁止范围": bucketDisallowed, "disallowed": bucketDisallowed, "disallowed scope": bucketDisallowed,
	"开场白": bucketOpening, "opening line": bucketOpening, "opening": bucketOpening,
}

var labelPattern = regexp.MustCompile(`[\[【]([^\[\]【】\n]{1,24})[\]】]`)

// Parse reads a synthesis reply. Bracketed labels are preferred; a JSON
// object is accepted as a legacy shape. ok is false when neither is found.
func Parse(name, raw string) (personaModel.Persona, bool) {
	buckets := splitBuckets(raw)
	if len(buckets) == 0 {
		buckets = jsonBuckets(raw)
	}
	if len(buckets) == 0 {
		return personaModel.Persona{}, false
	}

	fallback := personaModel.Default(name)
	pick := func(b bucket, def string) string {
		if v := strings.TrimSpace(buckets[b]); v != "" {
			return v
		}
		return def
	}

	language := InferLanguage(buckets[bucketLanguage])
	return personaModel.Persona{
		Name:            name,
		DefaultLanguage: language,
		SpeechTraits: personaModel.SpeechTraits{
			Pace:                pick(bucketPace, fallback.SpeechTraits.Pace),
			Tone:                pick(bucketTone, fallback.SpeechTraits.Tone),
			EmotionalExpression: pick(bucketEmotion, fallback.SpeechTraits.EmotionalExpression),
			ResponsePattern:     pick(bucketPattern, fallback.SpeechTraits.ResponsePattern),
			AvoidedStyles:       pick(bucketAvoid, fallback.SpeechTraits.AvoidedStyles),
		},
		AllowedScope:    pick(bucketAllowed, fallback.AllowedScope),
		DisallowedScope: pick(bucketDisallowed, fallback.DisallowedScope),
		OpeningLine:     pick(bucketOpening, personaModel.Greeting(name, language)),
		Synthesized:     true,
	}, true
}

// splitBuckets assigns the text after each known label to that label's bucket.
// Unknown bracketed text stays inside the surrounding bucket.
func splitBuckets(raw string) map[bucket]string {
	type label struct {
		bucket     bucket
		start, end int
	}

	var labels []label
	for _, m := range labelPattern.FindAllStringSubmatchIndex(raw, -1) {
		if b, ok := labelAliases[strings.ToLower(strings.TrimSpace(raw[m[2]:m[3]]))]; ok {
			labels = append(labels, label{bucket: b, start: m[0], end: m[1]})
		}
	}

	buckets := make(map[bucket]string)
	for i, l := range labels {
		stop := len(raw)
		if i+1 < len(labels) {
			stop = labels[i+1].start
		}
		content := joinLines(raw[l.end:stop])
		if content == "" {
			continue
		}
		if prev := buckets[l.bucket]; prev != "" {
			content = prev + " " + content
		}
		buckets[l.bucket] = content
	}
	return buckets
}

func joinLines(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, ":： ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

var jsonKeys = map[string]bucket{
	"default_language": bucketLanguage, "language": bucketLanguage,
	"pace": bucketPace,
	"tone": bucketTone,
	"emotional_expression": bucketEmotion,
	"speech_style_notes": bucketPattern, "response_pattern": bucketPattern,
	"avoided_styles": bucketAvoid,
	"allowed_references": bucketAllowed,
	"disallowed": bucketDisallowed,
	"opening_line": bucketOpening,
}

func jsonBuckets(raw string) map[bucket]string {
	block, ok := textscan.FirstBraceBlock(raw)
	if !ok {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return nil
	}

	buckets := make(map[bucket]string)
	for key, value := range fields {
		b, ok := jsonKeys[strings.ToLower(key)]
		if !ok {
			continue
		}
		var text string
		switch v := value.(type) {
		case string:
			text = v
		case []any:
			var items []string
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					items = append(items, strings.TrimSpace(s))
				}
			}
			text = strings.Join(items, "、")
		}
		if text = strings.TrimSpace(text); text != "" {
			buckets[b] = text
		}
	}
	return buckets
}
