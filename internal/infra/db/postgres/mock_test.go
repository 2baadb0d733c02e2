//go:build !integration

package postgres

import (
	"context"
	"time"

	"agent-promosi/internal/domain/model"
	"agent-promosi/internal/domain/ports/repository"
	red "agent-promosi/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerJobRepo mocks the database repository that the job decorator wraps.
type mockInnerJobRepo struct {
	SaveFunc                func(ctx context.Context, tx repository.Tx, j *model.JobListing) error
	FindByIDFunc            func(ctx context.Context, tx repository.Tx, id string) (*model.JobListing, error)
	ListAllFunc             func(ctx context.Context, tx repository.Tx) ([]*model.JobListing, error)
	SearchFunc              func(ctx context.Context, tx repository.Tx, f model.JobFilter) ([]*model.JobListing, error)
	IncrementApplicantsFunc func(ctx context.Context, tx repository.Tx, id string) error
	RefreshStatusesFunc     func(ctx context.Context, tx repository.Tx, now time.Time, w time.Duration, hot int) (int64, error)
}

func (m *mockInnerJobRepo) Save(ctx context.Context, tx repository.Tx, j *model.JobListing) error {
	return m.SaveFunc(ctx, tx, j)
}
func (m *mockInnerJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.JobListing, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerJobRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.JobListing, error) {
	return m.ListAllFunc(ctx, tx)
}
func (m *mockInnerJobRepo) Search(ctx context.Context, tx repository.Tx, f model.JobFilter) ([]*model.JobListing, error) {
	return m.SearchFunc(ctx, tx, f)
}
func (m *mockInnerJobRepo) IncrementApplicants(ctx context.Context, tx repository.Tx, id string) error {
	return m.IncrementApplicantsFunc(ctx, tx, id)
}
func (m *mockInnerJobRepo) RefreshStatuses(ctx context.Context, tx repository.Tx, now time.Time, w time.Duration, hot int) (int64, error) {
	return m.RefreshStatusesFunc(ctx, tx, now, w, hot)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc   func(ctx context.Context, key string) (string, error)
	SetFunc   func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNXFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelFunc   func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if m.SetNXFunc == nil {
		return true, nil
	}
	return m.SetNXFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error                                { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error)           { return 1, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, d time.Duration) error { return nil }
func (m *mockRedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return int64(0), nil
}
func (m *mockRedisClient) Close() error { return nil }
