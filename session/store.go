// Package session keeps per-conversation message histories in memory for
// the lifetime of the process. Sessions are fully independent of each
// other; the key space supports concurrent insert and lookup.
package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"skycast/model"
)

// ErrTurnInFlight is returned when a second turn is submitted for a session
// that is already processing one. Turns within a session are sequential.
var ErrTurnInFlight = errors.New("a turn is already in flight for this session")

// ErrNotFound is returned for unknown session keys.
var ErrNotFound = errors.New("session not found")

// Session is one conversation: an opaque key and an ordered, append-only
// message history. Only the dialogue controller appends during a turn.
type Session struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []model.Message `json:"messages"`

	inFlight bool
}

// Metadata is a lightweight view of a session for listing.
type Metadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Store maps session keys to histories. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Create makes a new session under a freshly generated key.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	return &Session{ID: sess.ID, CreatedAt: sess.CreatedAt, UpdatedAt: sess.UpdatedAt}
}

// GetOrCreate returns the session for key, creating it on first use.
func (s *Store) GetOrCreate(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		now := time.Now()
		sess = &Session{ID: key, CreatedAt: now, UpdatedAt: now}
		s.sessions[key] = sess
	}
	return snapshot(sess)
}

// History returns a copy of the message history for key.
func (s *Store) History(key string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyMessages(sess.Messages), nil
}

// Append adds messages to the end of a session's history. The history is
// append-only; existing entries are never rewritten.
func (s *Store) Append(key string, msgs ...model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return ErrNotFound
	}
	sess.Messages = append(sess.Messages, msgs...)
	sess.UpdatedAt = time.Now()
	if sess.Name == "" {
		for _, m := range msgs {
			if m.Role == model.RoleUser {
				sess.Name = GenerateSessionName(m.Content)
				break
			}
		}
	}
	return nil
}

// Reset replaces a session with an empty history under a freshly generated
// key, matching the explicit new-chat action. The old session is dropped.
func (s *Store) Reset(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	return &Session{ID: sess.ID, CreatedAt: sess.CreatedAt, UpdatedAt: sess.UpdatedAt}
}

// Delete removes a session.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[key]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, key)
	return nil
}

// List returns metadata for all sessions, newest update first.
func (s *Store) List() []Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Metadata, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, Metadata{
			ID:           sess.ID,
			Name:         sess.Name,
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.UpdatedAt,
			MessageCount: len(sess.Messages),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list
}

// BeginTurn marks a session as processing a turn. A second submission while
// one is in flight is rejected rather than left to race on the history.
func (s *Store) BeginTurn(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		return ErrNotFound
	}
	if sess.inFlight {
		return ErrTurnInFlight
	}
	sess.inFlight = true
	return nil
}

// EndTurn clears the in-flight mark.
func (s *Store) EndTurn(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.inFlight = false
	}
}

func snapshot(sess *Session) *Session {
	return &Session{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Messages:  copyMessages(sess.Messages),
	}
}

func copyMessages(msgs []model.Message) []model.Message {
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// GenerateSessionName derives a display name from the first user message.
func GenerateSessionName(firstMessage string) string {
	name := firstMessage
	if len(name) > 30 {
		name = name[:30] + "..."
	}

	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Chat %s", time.Now().Format("Jan 2, 3:04 PM"))
	}
	return name
}

// MessageMatch is one search hit within a session's history.
type MessageMatch struct {
	MessageIndex int
	Role         string
	Preview      string
	Timestamp    time.Time
}

// SearchMessages finds messages containing query, case-insensitively.
// System and tool messages are skipped; they are plumbing, not content.
func SearchMessages(messages []model.Message, query string) []MessageMatch {
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch
	for i, msg := range messages {
		if msg.Role == model.RoleSystem || msg.Role == model.RoleTool {
			continue
		}
		if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
			continue
		}
		preview := msg.Content
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		matches = append(matches, MessageMatch{
			MessageIndex: i,
			Role:         msg.Role,
			Preview:      preview,
			Timestamp:    msg.Timestamp,
		})
	}
	return matches
}
