//go:build !integration

package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
	"agent-promosi/internal/infra/worker"
)

// memJobRepo is a small in-memory JobRepository used by unit tests.
type memJobRepo struct {
	mu       sync.RWMutex
	order    []string
	store    map[string]*model.JobListing
	searched int
	listed   int
	incrErr  error
}

func newMemJobRepo(jobs ...*model.JobListing) *memJobRepo {
	m := &memJobRepo{store: map[string]*model.JobListing{}}
	for _, j := range jobs {
		_ = m.Save(context.Background(), nil, j)
	}
	return m
}

func (m *memJobRepo) Save(ctx context.Context, tx repository.Tx, j *model.JobListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[j.ID]; !ok {
		m.order = append(m.order, j.ID)
	}
	cp := *j
	m.store[j.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.JobListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.JobListing, error) {
	m.mu.Lock()
	m.listed++
	m.mu.Unlock()
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.JobListing, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.store[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memJobRepo) Search(ctx context.Context, tx repository.Tx, f model.JobFilter) ([]*model.JobListing, error) {
	m.mu.Lock()
	m.searched++
	m.mu.Unlock()
	all, _ := m.ListAll(ctx, tx)
	out := make([]*model.JobListing, 0)
	for _, j := range all {
		if f.Institution != "" && !strings.Contains(strings.ToLower(j.Institution), strings.ToLower(f.Institution)) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (m *memJobRepo) IncrementApplicants(ctx context.Context, tx repository.Tx, id string) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Applicants++
	return nil
}

func (m *memJobRepo) RefreshStatuses(ctx context.Context, tx repository.Tx, now time.Time, w time.Duration, hot int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, j := range m.store {
		if s := j.StatusAt(now, w, hot); s != j.Status {
			j.Status = s
			n++
		}
	}
	return n, nil
}

// memAppRepo enforces the (job, user) uniqueness the database would.
type memAppRepo struct {
	mu    sync.Mutex
	store []*model.JobApplication
}

func (m *memAppRepo) Create(ctx context.Context, tx repository.Tx, a *model.JobApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.store {
		if x.JobID == a.JobID && x.UserID == a.UserID {
			return domain.ErrAlreadyApplied
		}
	}
	cp := *a
	m.store = append(m.store, &cp)
	return nil
}

func (m *memAppRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.JobApplication, 0)
	for _, x := range m.store {
		if x.UserID == userID {
			cp := *x
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memProfileRepo struct {
	mu    sync.Mutex
	store map[string]*model.Profile
}

func (m *memProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProfileRepo) Update(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

// MockTxManager runs fn without a real transaction unless WithTxFunc is set.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// stubRelay answers with a fixed result, optionally waiting on gate first.
type stubRelay struct {
	mu     sync.Mutex
	calls  []string
	result model.RelayResult
	gate   chan struct{}
}

func (s *stubRelay) Send(ctx context.Context, message string) model.RelayResult {
	s.mu.Lock()
	s.calls = append(s.calls, message)
	s.mu.Unlock()
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return model.RelayResult{OK: false, Text: "timeout"}
		}
	}
	return s.result
}

func (s *stubRelay) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// goSubmitter runs each task on its own goroutine.
type goSubmitter struct{ wg sync.WaitGroup }

func (g *goSubmitter) Submit(task worker.Task) error {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		_ = task(context.Background())
	}()
	return nil
}

type rejectingSubmitter struct{}

func (rejectingSubmitter) Submit(task worker.Task) error { return worker.ErrQueueFull }

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

type keyTexts struct{}

func (keyTexts) T(key string, args ...interface{}) string { return key }

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
