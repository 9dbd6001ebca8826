package patient

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

type mockPatientRepo struct {
	mu     sync.Mutex
	nextID int64
	store  map[int64]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{nextID: 1, store: make(map[int64]*Patient)}
}

func (m *mockPatientRepo) emailTaken(email string, except int64) bool {
	for id, p := range m.store {
		if p.Email == email && id != except {
			return true
		}
	}
	return false
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(p.Email, 0) {
		return apperr.DuplicateEmail(nil)
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("patient")
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("patient")
}

func (m *mockPatientRepo) List(_ context.Context) ([]*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Patient
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPatientRepo) Update(_ context.Context, id int64, u Update) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("patient")
	}
	if u.Email != nil && m.emailTaken(*u.Email, id) {
		return nil, apperr.DuplicateEmail(nil)
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id int64) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound("patient")
	}
	delete(m.store, id)
	return p, nil
}
