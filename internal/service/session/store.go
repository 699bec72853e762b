package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/zhouzirui/idol-oracle/backend/internal/model/conversation"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSessionID = errors.New("invalid session id")
)

const maxSessionIDLength = 64

type entry struct {
	mu      sync.Mutex
	session *conversation.Session
}

// Store keeps sessions in memory. Each session has its own mutex so that
// mutations against one id are serialized while other ids proceed independently.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *zap.Logger
}

// NewStore bootstraps an empty in-memory store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries: make(map[string]*entry),
		logger:  logger.Named("session"),
	}
}

// Create provisions a session. An empty id gets a generated one; an id that
// already exists returns the existing session with created=false.
func (s *Store) Create(_ context.Context, id string) (*conversation.Session, bool, error) {
	id = strings.TrimSpace(id)
	if id != "" && !validID(id) {
		return nil, false, ErrInvalidSessionID
	}

	s.mu.Lock()
	if e, ok := s.entries[id]; ok && id != "" {
		s.mu.Unlock()
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.session.Clone(), false, nil
	}
	sess := conversation.NewSession(id)
	s.entries[sess.ID] = &entry{session: sess}
	snapshot := sess.Clone()
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("session", sess.ID))
	return snapshot, true, nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(_ context.Context, id string) (*conversation.Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.entries, id)
	s.logger.Debug("session deleted", zap.String("session", id))
	return nil
}

// AppendMessage appends one message to the session history.
func (s *Store) AppendMessage(ctx context.Context, id string, role conversation.Role, content string) (conversation.Message, error) {
	var msg conversation.Message
	err := s.Update(ctx, id, func(sess *conversation.Session) error {
		msg = sess.AddMessage(role, content)
		return nil
	})
	return msg, err
}

// AppendDivination records a divination; the session moves to TRANSITION/ASK_MORE as a side effect.
func (s *Store) AppendDivination(ctx context.Context, id, kind, question, result string) (conversation.Divination, error) {
	var div conversation.Divination
	err := s.Update(ctx, id, func(sess *conversation.Session) error {
		var err error
		div, err = sess.RecordDivination(kind, question, result)
		return err
	})
	return div, err
}

// Update runs fn while holding the session's lock. fn receives the live record
// and must not retain it after returning.
func (s *Store) Update(_ context.Context, id string, fn func(*conversation.Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Messages returns a page of the session history.
func (s *Store) Messages(ctx context.Context, id string, offset, limit int) ([]conversation.Message, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return page(sess.Messages, offset, limit), nil
}

// Divinations returns a page of the divination history.
func (s *Store) Divinations(ctx context.Context, id string, offset, limit int) ([]conversation.Divination, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return page(sess.Divinations, offset, limit), nil
}

// Len reports how many sessions are live.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) lookup(id string) (*entry, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]T(nil), items[offset:end]...)
}

func validID(id string) bool {
	if len(id) > maxSessionIDLength {
		return false
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' {
			return false
		}
	}
	return true
}
