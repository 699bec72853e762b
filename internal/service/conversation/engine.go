// Package conversation drives the divination -> transition -> idol chat flow.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/analysis/intent"
	"github.com/zhouzirui/idol-oracle/backend/internal/model/conversation"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/divination"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/persona"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/session"
)

// ErrEmptyMessage is returned when the inbound text is blank.
var ErrEmptyMessage = errors.New("message is required")

// Reply is the outcome of one Handle call.
type Reply struct {
	SessionID       string                      `json:"sessionId"`
	Text            string                      `json:"reply"`
	Translation     string                      `json:"translation,omitempty"`
	Stage           conversation.Stage          `json:"stage"`
	TransitionStep  conversation.TransitionStep `json:"transitionStep,omitempty"`
	VirtualReminder string                      `json:"virtualReminder,omitempty"`
}

// Message joins the reply and its translation block for text-only surfaces.
func (r Reply) Message() string {
	if r.Translation == "" {
		return r.Text
	}
	return r.Text + translationHeader + r.Translation
}

// Engine owns stage dispatch for all sessions in a store.
type Engine struct {
	store       *session.Store
	classifier  *intent.Classifier
	diviner     *divination.Service
	synthesizer *persona.Synthesizer
	chatter     *persona.Chatter
	history     int
	logger      *zap.Logger

	handlers map[conversation.Stage]stageHandler
}

type stageHandler func(ctx context.Context, sess *conversation.Session, text string) turn

// turn is a computed reply before it is written to the session.
type turn struct {
	text        string
	translation string
}

// Options configures an Engine.
type Options struct {
	// HistoryLimit is the trailing window replayed into chat prompts.
	HistoryLimit int
	Classifier   *intent.Classifier
}

// NewEngine wires every stage service over one completion collaborator.
func NewEngine(store *session.Store, completer llm.Completer, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = intent.Default()
	}
	history := opts.HistoryLimit
	if history <= 0 {
		history = persona.DefaultHistoryLimit
	}

	e := &Engine{
		store:       store,
		classifier:  classifier,
		diviner:     divination.NewService(completer, logger),
		synthesizer: persona.NewSynthesizer(completer, classifier, logger),
		chatter:     persona.NewChatter(completer, history, logger),
		history:     history,
		logger:      logger.Named("conversation"),
	}
	e.handlers = map[conversation.Stage]stageHandler{
		conversation.StageDivination: e.handleDivination,
		conversation.StageTransition: e.handleTransition,
		conversation.StageIdolChat:   e.handleIdolChat,
	}
	return e
}

// Diviner exposes the divination service for explicit readings.
func (e *Engine) Diviner() *divination.Service {
	return e.diviner
}

// Store exposes the backing session store to the transport layer.
func (e *Engine) Store() *session.Store {
	return e.store
}

// Handle appends text as a user message, runs the current stage and appends
// exactly one assistant message. Business failures become apology replies;
// only session lookup problems and blank input are returned as errors.
func (e *Engine) Handle(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	if strings.TrimSpace(sessionID) == "" {
		return Reply{}, session.ErrInvalidSessionID
	}

	// A turn runs to completion once started; llm.Timeout bounds each call.
	ctx = context.WithoutCancel(ctx)

	var reply Reply
	err := e.store.Update(ctx, sessionID, func(sess *conversation.Session) error {
		sess.AddMessage(conversation.RoleUser, text)

		before := sess.Stage
		t := e.dispatch(ctx, sess, text)
		sess.AddMessage(conversation.RoleAssistant, t.text)

		reply = Reply{
			SessionID:      sess.ID,
			Text:           t.text,
			Translation:    t.translation,
			Stage:          sess.Stage,
			TransitionStep: sess.TransitionStep,
		}
		if sess.Stage == conversation.StageIdolChat {
			reply.VirtualReminder = VirtualReminder
		}

		e.logger.Debug("turn handled",
			zap.String("session", sess.ID),
			zap.String("from", before.String()),
			zap.String("to", sess.Stage.String()),
			zap.String("step", string(sess.TransitionStep)),
		)
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	return reply, nil
}

func (e *Engine) dispatch(ctx context.Context, sess *conversation.Session, text string) (t turn) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("stage handler panicked",
				zap.String("session", sess.ID),
				zap.String("stage", sess.Stage.String()),
				zap.Any("panic", r),
			)
			t = turn{text: ReplyInternalError}
		}
	}()

	handler, ok := e.handlers[sess.Stage]
	if !ok {
		e.logger.Error("no handler for stage", zap.String("session", sess.ID), zap.String("stage", sess.Stage.String()))
		return turn{text: ReplyInternalError}
	}
	return handler(ctx, sess, text)
}

func (e *Engine) handleDivination(ctx context.Context, sess *conversation.Session, text string) turn {
	kind := e.classifier.Topic(text)

	outcome, err := e.diviner.Divine(ctx, kind, text)
	if err != nil {
		e.logger.Warn("divination failed", zap.String("session", sess.ID), zap.Error(err))
		return turn{text: ReplyDivinationUnavailable}
	}

	if _, err := sess.RecordDivination(string(outcome.Kind), text, outcome.Text); err != nil {
		e.logger.Error("record divination", zap.String("session", sess.ID), zap.Error(err))
	}
	return turn{text: outcome.Text}
}

func (e *Engine) handleTransition(ctx context.Context, sess *conversation.Session, text string) turn {
	switch sess.TransitionStep {
	case conversation.StepAskIdol:
		return e.summon(ctx, sess, text)
	case conversation.StepAskMore, conversation.StepNone:
		return e.handleAskMore(ctx, sess, text)
	default:
		e.logger.Error("unknown transition step", zap.String("session", sess.ID), zap.String("step", string(sess.TransitionStep)))
		return turn{text: ReplyInternalError}
	}
}

func (e *Engine) handleAskMore(ctx context.Context, sess *conversation.Session, text string) turn {
	if sess.TransitionStep == conversation.StepNone {
		_ = sess.SetTransitionStep(conversation.StepAskMore)
	}

	switch e.classifier.Sentiment(text) {
	case intent.SentimentNegative:
		return turn{text: ReplyTopicClosed}
	case intent.SentimentAffirmative:
		if err := sess.SetTransitionStep(conversation.StepAskIdol); err != nil {
			e.logger.Error("advance to ask idol", zap.String("session", sess.ID), zap.Error(err))
			return turn{text: ReplyInternalError}
		}
		return turn{text: ReplyAskWhichIdol}
	}

	if e.classifier.LooksLikeName(e.classifier.NormalizeName(text)) {
		return e.summon(ctx, sess, text)
	}
	return turn{text: ReplyAskYesNo}
}

// summon synthesizes a persona for text and enters IDOL_CHAT. On an invalid
// name the stage and step are left as they were.
func (e *Engine) summon(ctx context.Context, sess *conversation.Session, text string) turn {
	p, err := e.synthesizer.Synthesize(ctx, text)
	if err != nil {
		e.logger.Info("persona name rejected", zap.String("session", sess.ID), zap.String("text", text))
		return turn{text: ReplyNameNotRecognized}
	}

	if err := sess.EnterIdolChat(p); err != nil {
		e.logger.Error("enter idol chat", zap.String("session", sess.ID), zap.Error(err))
		return turn{text: ReplyInternalError}
	}

	t := turn{text: fmt.Sprintf(connectedFormat, p.Name, p.OpeningLine)}
	if p.NeedsTranslation() {
		t.translation = e.chatter.Translate(ctx, p.OpeningLine)
	}
	return t
}

func (e *Engine) handleIdolChat(ctx context.Context, sess *conversation.Session, _ string) turn {
	if sess.Persona == nil {
		e.logger.Error("idol chat without persona, rolling back", zap.String("session", sess.ID))
		if err := sess.RollbackToTransition(); err != nil {
			e.logger.Error("rollback failed", zap.String("session", sess.ID), zap.Error(err))
		}
		return turn{text: ReplyPersonaLost}
	}

	reply, err := e.chatter.Reply(ctx, *sess.Persona, sess.RecentMessages(e.history))
	if err != nil {
		e.logger.Warn("persona reply failed", zap.String("session", sess.ID), zap.Error(err))
		return turn{text: ReplyChatUnavailable}
	}
	return turn{text: reply.Text, translation: reply.Translation}
}
