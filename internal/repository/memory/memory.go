// Package memory implements the user and message stores in process memory.
// It backs STORE=memory for local development and the end-to-end tests, and
// enforces the same uniqueness and referential rules as the MySQL schema.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/messagely/messagely-go/internal/model"
	"github.com/messagely/messagely-go/internal/repository"
)

// Store holds both relations behind one lock so joins see a consistent view.
type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User
	messages map[string]model.Message
}

func New() *Store {
	return &Store{
		users:    make(map[string]model.User),
		messages: make(map[string]model.Message),
	}
}

func (s *Store) Users() *UserStore       { return &UserStore{s: s} }
func (s *Store) Messages() *MessageStore { return &MessageStore{s: s} }

type UserStore struct {
	s *Store
}

func (u *UserStore) Create(ctx context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	u.s.users[user.Username] = *user
	return nil
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user.LastLoginAt = copyTime(user.LastLoginAt)
	return &user, nil
}

func (u *UserStore) Exists(ctx context.Context, username string) (bool, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	_, ok := u.s.users[username]
	return ok, nil
}

func (u *UserStore) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[username]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LastLoginAt = &at
	u.s.users[username] = user
	return nil
}

func (u *UserStore) List(ctx context.Context) ([]model.UserSummary, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	users := lo.Map(lo.Values(u.s.users), func(user model.User, _ int) model.UserSummary {
		return model.UserSummary{Username: user.Username, FirstName: user.FirstName, LastName: user.LastName}
	})
	slices.SortFunc(users, func(a, b model.UserSummary) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

type MessageStore struct {
	s *Store
}

func (m *MessageStore) Create(ctx context.Context, msg *model.Message) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	_, fromOK := m.s.users[msg.FromUsername]
	_, toOK := m.s.users[msg.ToUsername]
	if !fromOK || !toOK {
		return repository.ErrUnknownParticipant
	}

	msg.ReadAt = nil
	m.s.messages[msg.ID] = *msg
	return nil
}

func (m *MessageStore) GetByID(ctx context.Context, id string) (*model.MessageDetail, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	msg, ok := m.s.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	return &model.MessageDetail{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
		ReadAt:   copyTime(msg.ReadAt),
		FromUser: m.s.contact(msg.FromUsername),
		ToUser:   m.s.contact(msg.ToUsername),
	}, nil
}

func (m *MessageStore) MarkRead(ctx context.Context, id string, at time.Time) (*model.ReadReceipt, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	msg, ok := m.s.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	if msg.ReadAt == nil {
		msg.ReadAt = &at
		m.s.messages[id] = msg
	}
	return &model.ReadReceipt{ID: msg.ID, ReadAt: *msg.ReadAt}, nil
}

func (m *MessageStore) ListFrom(ctx context.Context, username string) ([]model.SentMessage, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	sent := m.s.filter(func(msg model.Message) bool { return msg.FromUsername == username })
	return lo.Map(sent, func(msg model.Message, _ int) model.SentMessage {
		return model.SentMessage{
			ID:     msg.ID,
			ToUser: m.s.contact(msg.ToUsername),
			Body:   msg.Body,
			SentAt: msg.SentAt,
			ReadAt: copyTime(msg.ReadAt),
		}
	}), nil
}

func (m *MessageStore) ListTo(ctx context.Context, username string) ([]model.ReceivedMessage, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	received := m.s.filter(func(msg model.Message) bool { return msg.ToUsername == username })
	return lo.Map(received, func(msg model.Message, _ int) model.ReceivedMessage {
		return model.ReceivedMessage{
			ID:       msg.ID,
			FromUser: m.s.contact(msg.FromUsername),
			Body:     msg.Body,
			SentAt:   msg.SentAt,
			ReadAt:   copyTime(msg.ReadAt),
		}
	}), nil
}

// filter returns matching messages ordered by sent_at, then id. Callers hold the lock.
func (s *Store) filter(keep func(model.Message) bool) []model.Message {
	msgs := lo.Filter(lo.Values(s.messages), func(msg model.Message, _ int) bool { return keep(msg) })
	slices.SortFunc(msgs, func(a, b model.Message) int {
		if c := a.SentAt.Compare(b.SentAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return msgs
}

// contact looks up a participant. Callers hold the lock.
func (s *Store) contact(username string) model.Contact {
	u := s.users[username]
	return model.Contact{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
