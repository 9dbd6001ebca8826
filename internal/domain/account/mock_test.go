package account

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dentalcare/dentalcare/internal/domain/chat"
	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

type mockUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*User
	// raceOnCreate simulates a concurrent signup that won between the
	// existence check and the insert.
	raceOnCreate bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, byEmail: make(map[string]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok || m.raceOnCreate {
		return apperr.DuplicateEmail(errors.New("23505"))
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) UpdatePasswordHash(_ context.Context, id int64, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = digest
			return nil
		}
	}
	return apperr.NotFound("user")
}

func (m *mockUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

type mockSessions struct {
	mu     sync.Mutex
	nextID int64
	byUser map[int64]*chat.Session
	fail   bool
}

func newMockSessions() *mockSessions {
	return &mockSessions{nextID: 100, byUser: make(map[int64]*chat.Session)}
}

func (m *mockSessions) CreateSession(_ context.Context, userID int64, firstName, email string) (*chat.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("insert failed")
	}
	s := &chat.Session{ID: m.nextID, UserID: userID, Title: chat.SessionTitle(firstName), CreatedBy: email, UpdatedBy: email}
	m.nextID++
	m.byUser[userID] = s
	return s, nil
}

func (m *mockSessions) SessionForUser(_ context.Context, userID int64) (*chat.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[userID]
	if !ok {
		return nil, apperr.NotFound("chat session")
	}
	return s, nil
}

// mockTx undoes user inserts when fn fails.
type mockTx struct {
	users *mockUserRepo
}

func (t *mockTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.users.mu.Lock()
	snapshot := make(map[string]*User, len(t.users.byEmail))
	for k, v := range t.users.byEmail {
		snapshot[k] = v
	}
	t.users.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.users.mu.Lock()
		t.users.byEmail = snapshot
		t.users.mu.Unlock()
		return err
	}
	return nil
}

type signinCounter struct {
	ok, failed int
}

func (s *signinCounter) RecordSignin(success bool) {
	if success {
		s.ok++
	} else {
		s.failed++
	}
}
