package persona

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/model/conversation"
	personaModel "github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
)

// DefaultHistoryLimit is the number of trailing messages replayed into a chat prompt.
const DefaultHistoryLimit = 10

// ChatReply is one in-character reply.
type ChatReply struct {
	Text        string
	Translation string
}

// Chatter generates replies in the voice of a synthesized persona.
type Chatter struct {
	completer    llm.Completer
	historyLimit int
	logger       *zap.Logger
}

// NewChatter creates a Chatter. historyLimit <= 0 uses DefaultHistoryLimit.
func NewChatter(completer llm.Completer, historyLimit int, logger *zap.Logger) *Chatter {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chatter{completer: completer, historyLimit: historyLimit, logger: logger.Named("persona")}
}

// BuildChatPrompt renders the chat prompt for p over the trailing history window.
func (c *Chatter) BuildChatPrompt(p personaModel.Persona, history []conversation.Message) (string, error) {
	if len(history) > c.historyLimit {
		history = history[len(history)-c.historyLimit:]
	}

	lines := make([]map[string]string, 0, len(history))
	for _, msg := range history {
		speaker := "用户"
		if msg.Role == conversation.RoleAssistant {
			speaker = p.Name
		}
		lines = append(lines, map[string]string{"speaker": speaker, "content": msg.Content})
	}

	return chatPrompt.Render(map[string]any{
		"name":         p.Name,
		"pace":         p.SpeechTraits.Pace,
		"tone":         p.SpeechTraits.Tone,
		"emotion":      p.SpeechTraits.EmotionalExpression,
		"pattern":      p.SpeechTraits.ResponsePattern,
		"avoid":        p.SpeechTraits.AvoidedStyles,
		"allowed":      p.AllowedScope,
		"disallowed":   p.DisallowedScope,
		"history":      lines,
		"language":     p.DefaultLanguage,
		"languageName": LanguageName(p.DefaultLanguage),
	})
}

// Reply generates one in-character reply. Upstream failures are returned;
// a failed translation only drops the translation.
func (c *Chatter) Reply(ctx context.Context, p personaModel.Persona, history []conversation.Message) (ChatReply, error) {
	text, err := c.BuildChatPrompt(p, history)
	if err != nil {
		return ChatReply{}, err
	}

	raw, err := c.completer.Complete(ctx, text)
	if err != nil {
		return ChatReply{}, fmt.Errorf("persona reply: %w", err)
	}

	reply := ChatReply{Text: StripRoleLabel(raw, p.Name)}
	if reply.Text == "" {
		return ChatReply{}, fmt.Errorf("persona reply: %w: empty after label strip", llm.ErrUpstream)
	}
	if p.NeedsTranslation() {
		reply.Translation = c.Translate(ctx, reply.Text)
	}
	return reply, nil
}

// Translate returns a Chinese translation of text, or "" when the call fails.
func (c *Chatter) Translate(ctx context.Context, text string) string {
	prompt, err := translatePrompt.Render(map[string]any{"text": text})
	if err != nil {
		c.logger.Error("render translate prompt", zap.Error(err))
		return ""
	}
	out, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("translation failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out)
}

// StripRoleLabel removes leading "Name:" style labels the model may echo.
func StripRoleLabel(text, name string) string {
	text = strings.TrimSpace(text)
	labels := []string{name, "assistant", "助手", "ai"}
	for {
		before := text
		for _, label := range labels {
			if label == "" {
				continue
			}
			text = stripLabel(text, label)
		}
		if text == before {
			return text
		}
	}
}

func stripLabel(text, label string) string {
	rest, ok := cutPrefixFold(strings.TrimLeft(text, "*"), label)
	if !ok {
		if inner, found := cutBracketed(text); found && strings.EqualFold(inner.label, label) {
			return strings.TrimSpace(strings.TrimLeft(inner.rest, ":： "))
		}
		return text
	}
	rest = strings.TrimLeft(rest, "*")
	for _, sep := range []string{":", "："} {
		if strings.HasPrefix(rest, sep) {
			return strings.TrimSpace(rest[len(sep):])
		}
	}
	return text
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

type bracketed struct {
	label string
	rest  string
}

func cutBracketed(text string) (bracketed, bool) {
	for _, pair := range [][2]string{{"[", "]"}, {"【", "】"}} {
		if !strings.HasPrefix(text, pair[0]) {
			continue
		}
		end := strings.Index(text, pair[1])
		if end < 0 {
			return bracketed{}, false
		}
		return bracketed{
			label: strings.TrimSpace(text[len(pair[0]):end]),
			rest:  text[end+len(pair[1]):],
		}, true
	}
	return bracketed{}, false
}
