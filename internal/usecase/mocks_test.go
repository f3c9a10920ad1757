// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/repository"
	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/infra/worker"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger { return logging.Nop() }

// --- allow-list ---

type MockAllowList struct {
	mu          sync.Mutex
	users       map[int64]*model.AuthorizedUser
	ContainsErr error
}

func NewMockAllowList(ids ...int64) *MockAllowList {
	m := &MockAllowList{users: map[int64]*model.AuthorizedUser{}}
	for _, id := range ids {
		m.users[id] = &model.AuthorizedUser{UserID: id}
	}
	return m
}

func (m *MockAllowList) Add(_ context.Context, _ repository.Tx, u *model.AuthorizedUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.UserID]; ok {
		return domain.ErrAlreadyExists
	}
	m.users[u.UserID] = u
	return nil
}

func (m *MockAllowList) Remove(_ context.Context, _ repository.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockAllowList) Contains(_ context.Context, _ repository.Tx, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ContainsErr != nil {
		return false, m.ContainsErr
	}
	_, ok := m.users[id]
	return ok, nil
}

func (m *MockAllowList) List(_ context.Context, _ repository.Tx) ([]*model.AuthorizedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.AuthorizedUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// --- lookup log ---

type MockLookupLog struct {
	mu      sync.Mutex
	records []*model.LookupRecord
}

func (m *MockLookupLog) Save(_ context.Context, _ repository.Tx, rec *model.LookupRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *MockLookupLog) ListRecent(_ context.Context, _ repository.Tx, limit int) ([]*model.LookupRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.LookupRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// --- worker pool ---

// inlinePool runs tasks synchronously.
type inlinePool struct{ full bool }

func (p *inlinePool) Submit(task worker.Task) error {
	if p.full {
		return worker.ErrQueueFull
	}
	return task(context.Background())
}

// --- upstreams ---

type MockResolver struct {
	Handles map[string]model.BankHandle
	Err     error
}

func (m *MockResolver) Resolve(_ context.Context, handle string) (*model.BankHandle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	h, ok := m.Handles[handle]
	if !ok {
		return nil, domain.ErrUnknownHandle
	}
	return &h, nil
}

type MockIFSC struct {
	Details map[string]*model.IFSCDetails
	Err     error
	Calls   []string
}

func (m *MockIFSC) Fetch(_ context.Context, code string) (*model.IFSCDetails, error) {
	m.Calls = append(m.Calls, code)
	if m.Err != nil {
		return nil, m.Err
	}
	d, ok := m.Details[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

var errBoom = errors.New("boom")
