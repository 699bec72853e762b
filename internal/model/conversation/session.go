package conversation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
)

// Role 标记一条消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 是会话中的一轮发言，插入顺序即对话顺序。
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Divination 记录一次占卜的问题与渲染后的结果。
type Divination struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"`
	Question  string    `json:"question"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session captures one conversation and its stage machine state.
type Session struct {
	ID             string           `json:"sessionId"`
	Stage          Stage            `json:"stage"`
	TransitionStep TransitionStep   `json:"transitionStep,omitempty"`
	Persona        *persona.Persona `json:"persona,omitempty"`
	Messages       []Message        `json:"messages"`
	Divinations    []Divination     `json:"divinations"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// NewSession returns a session in the initial DIVINATION stage. An empty id gets a fresh uuid.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		Stage:       StageDivination,
		Messages:    make([]Message, 0, 16),
		Divinations: make([]Divination, 0, 2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddMessage appends a message and returns the stored copy.
func (s *Session) AddMessage(role Role, content string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.Messages = append(s.Messages, msg)
	s.touch()
	return msg
}

// RecordDivination appends a divination record. Recording is what moves the
// session from DIVINATION to TRANSITION with step ASK_MORE; when the session is
// already in TRANSITION the step is reset to ASK_MORE.
func (s *Session) RecordDivination(kind, question, result string) (Divination, error) {
	if s.Stage != StageDivination && s.Stage != StageTransition {
		return Divination{}, fmt.Errorf("%w: record divination in %s", ErrIllegalTransition, s.Stage)
	}

	div := Divination{
		ID:        uuid.NewString(),
		Kind:      kind,
		Question:  question,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	s.Divinations = append(s.Divinations, div)
	s.Stage = StageTransition
	s.TransitionStep = StepAskMore
	s.touch()
	return div, nil
}

// SetTransitionStep changes the sub-step; only valid while in TRANSITION.
func (s *Session) SetTransitionStep(step TransitionStep) error {
	if s.Stage != StageTransition {
		return fmt.Errorf("%w: step %s outside TRANSITION", ErrIllegalTransition, step)
	}
	if !step.Valid() || step == StepNone {
		return fmt.Errorf("%w: unknown step %q", ErrIllegalTransition, step)
	}
	s.TransitionStep = step
	s.touch()
	return nil
}

// EnterIdolChat stores the persona and moves TRANSITION -> IDOL_CHAT in one step.
func (s *Session) EnterIdolChat(p persona.Persona) error {
	if !CanTransition(s.Stage, StageIdolChat) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Stage, StageIdolChat)
	}
	if s.Persona != nil {
		return fmt.Errorf("%w: persona already set", ErrIllegalTransition)
	}
	s.Persona = &p
	s.Stage = StageIdolChat
	s.TransitionStep = StepNone
	s.touch()
	return nil
}

// RollbackToTransition is the single backward edge, used when IDOL_CHAT has no persona.
func (s *Session) RollbackToTransition() error {
	if s.Stage != StageIdolChat {
		return fmt.Errorf("%w: rollback from %s", ErrIllegalTransition, s.Stage)
	}
	s.Stage = StageTransition
	s.TransitionStep = StepAskMore
	s.touch()
	return nil
}

// RecentMessages returns at most limit trailing messages, oldest first.
func (s *Session) RecentMessages(limit int) []Message {
	if limit <= 0 || len(s.Messages) <= limit {
		return append([]Message(nil), s.Messages...)
	}
	return append([]Message(nil), s.Messages[len(s.Messages)-limit:]...)
}

// Clone returns a deep copy safe to hand outside the owning lock.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = append([]Message(nil), s.Messages...)
	cp.Divinations = append([]Divination(nil), s.Divinations...)
	if s.Persona != nil {
		p := *s.Persona
		cp.Persona = &p
	}
	return &cp
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
