package divination

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/analysis/intent"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
)

// TypeInfo describes one supported divination topic.
type TypeInfo struct {
	Type intent.Label `json:"type"`
	Name string       `json:"name"`
}

var types = []TypeInfo{
	{Type: intent.Love, Name: "爱情占卜"},
	{Type: intent.Career, Name: "事业占卜"},
	{Type: intent.Fortune, Name: "运势占卜"},
	{Type: intent.Study, Name: "学业占卜"},
	{Type: intent.General, Name: "综合占卜"},
}

var topicNames = map[intent.Label]string{
	intent.Love:    "爱情",
	intent.Career:  "事业",
	intent.Fortune: "运势",
	intent.Study:   "学业",
	intent.General: "综合",
}

// Types lists the supported topics in display order.
func Types() []TypeInfo {
	out := make([]TypeInfo, len(types))
	copy(out, types)
	return out
}

// ParseType resolves a client-supplied topic code such as "love".
func ParseType(raw string) (intent.Label, bool) {
	kind := intent.Label(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range types {
		if t.Type == kind {
			return kind, true
		}
	}
	return "", false
}

// Outcome is one rendered divination.
type Outcome struct {
	Kind   intent.Label
	Text   string
	Method Method
	// Softened is set when fatalistic phrases had to be rewritten locally.
	Softened bool
}

// Service generates and formats divinations.
type Service struct {
	completer llm.Completer
	extractor *Extractor
	logger    *zap.Logger
}

// NewService wires the completion collaborator and the default extractor.
func NewService(completer llm.Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("divination")
	return &Service{
		completer: completer,
		extractor: NewExtractor(logger),
		logger:    logger,
	}
}

// Divine asks the model for one reading of question and renders it.
// Only upstream failures are returned; format problems degrade to pass-through.
func (s *Service) Divine(ctx context.Context, kind intent.Label, question string) (Outcome, error) {
	if _, ok := topicNames[kind]; !ok {
		kind = intent.General
	}

	raw, err := s.generate(ctx, kind, question, nil)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Kind: kind}
	if violations := CheckCompliance(raw); len(violations) > 0 {
		s.logger.Warn("divination reply violates wording rules, regenerating",
			zap.Strings("violations", violations))

		if retry, err := s.generate(ctx, kind, question, violations); err != nil {
			s.logger.Warn("regeneration failed, softening first reply", zap.Error(err))
		} else {
			raw = retry
		}

		if len(CheckCompliance(raw)) > 0 {
			raw = Soften(raw)
			outcome.Softened = true
		}
	}

	outcome.Text, outcome.Method = s.extractor.Extract(raw)
	s.logger.Debug("divination rendered",
		zap.String("kind", string(kind)),
		zap.String("method", string(outcome.Method)),
		zap.Bool("softened", outcome.Softened),
	)
	return outcome, nil
}

func (s *Service) generate(ctx context.Context, kind intent.Label, question string, violations []string) (string, error) {
	text, err := divinationPrompt.Render(map[string]any{
		"kind":       string(kind),
		"kindName":   topicNames[kind],
		"question":   strings.TrimSpace(question),
		"strict":     len(violations) > 0,
		"violations": strings.Join(violations, "、"),
	})
	if err != nil {
		return "", err
	}

	raw, err := s.completer.Complete(ctx, text)
	if err != nil {
		return "", fmt.Errorf("divination: %w", err)
	}
	return raw, nil
}

// BuildPrompt renders the divination prompt without calling the model.
func BuildPrompt(kind intent.Label, question string) (string, error) {
	return divinationPrompt.Render(map[string]any{
		"kind":     string(kind),
		"kindName": topicNames[kind],
		"question": question,
	})
}
