package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/inference"
)

type mockSessionRepo struct {
	mu     sync.Mutex
	nextID int64
	store  map[int64]*Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{nextID: 1, store: make(map[int64]*Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("chat session")
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) GetByUserID(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *Session
	for _, s := range m.store {
		if s.UserID == userID && (found == nil || s.ID < found.ID) {
			found = s
		}
	}
	if found == nil {
		return nil, apperr.NotFound("chat session")
	}
	cp := *found
	return &cp, nil
}

type mockMessageRepo struct {
	mu       sync.Mutex
	nextID   int64
	items    []*Message
	failRole string
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{nextID: 1}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRole != "" && msg.Role == m.failRole {
		return errors.New("insert failed")
	}
	msg.ID = m.nextID
	m.nextID++
	msg.CreatedAt = time.Now()
	cp := *msg
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockMessageRepo) ListBySession(_ context.Context, sessionID int64) ([]*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Message
	for _, msg := range m.items {
		if msg.SessionID == sessionID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// mockTx rolls the message store back when fn fails.
type mockTx struct {
	messages *mockMessageRepo
}

func (t *mockTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.messages.mu.Lock()
	snapshot := append([]*Message(nil), t.messages.items...)
	t.messages.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.messages.mu.Lock()
		t.messages.items = snapshot
		t.messages.mu.Unlock()
		return err
	}
	return nil
}

type fakeCompleter struct {
	reply string
	err   error
	got   []inference.Message
}

func (f *fakeCompleter) Chat(_ context.Context, msgs []inference.Message) (string, error) {
	f.got = msgs
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
