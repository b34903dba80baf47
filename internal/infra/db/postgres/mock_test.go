//go:build !integration

package postgres

import (
	"context"
	"time"

	"blogforge/internal/domain/model"
	red "blogforge/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerBatchJobRepo mocks the database repository the decorator wraps.
type mockInnerBatchJobRepo struct {
	SaveFunc       func(ctx context.Context, qx any, job *model.BatchJob) error
	FindByIDFunc   func(ctx context.Context, qx any, id string) (*model.BatchJob, error)
	FindRecentFunc func(ctx context.Context, qx any, limit int) ([]*model.BatchJob, error)
}

func (m *mockInnerBatchJobRepo) Save(ctx context.Context, qx any, job *model.BatchJob) error {
	return m.SaveFunc(ctx, qx, job)
}
func (m *mockInnerBatchJobRepo) FindByID(ctx context.Context, qx any, id string) (*model.BatchJob, error) {
	return m.FindByIDFunc(ctx, qx, id)
}
func (m *mockInnerBatchJobRepo) FindRecent(ctx context.Context, qx any, limit int) ([]*model.BatchJob, error) {
	return m.FindRecentFunc(ctx, qx, limit)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc   func(ctx context.Context, key string) (string, error)
	SetFunc   func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc   func(ctx context.Context, keys ...string) error
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Close() error                   { return m.CloseFunc() }
