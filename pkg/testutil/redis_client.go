package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient keeps the keys in memory, ttl is ignored. Function fields override the
// default behavior.
type MockRedisClient struct {
	ExistFunc      func(ctx context.Context, key string) (bool, error)
	DelFunc        func(ctx context.Context, key ...string) error
	SetNXFunc      func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	DelIfEqualFunc func(ctx context.Context, key, value string) (bool, error)
	SetObjFunc     func(ctx context.Context, key string, obj any, ttl time.Duration) error
	GetObjFunc     func(ctx context.Context, key string, v any) error

	mu   sync.Mutex
	data map[string]string
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{data: make(map[string]string)}
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, key...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range key {
		delete(m.data, k)
	}

	return nil
}

func (m *MockRedisClient) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.SetNXFunc != nil {
		return m.SetNXFunc(ctx, key, value, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}

	m.data[key] = value
	return true, nil
}

func (m *MockRedisClient) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	if m.DelIfEqualFunc != nil {
		return m.DelIfEqualFunc(ctx, key, value)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.data[key]; !ok || current != value {
		return false, nil
	}

	delete(m.data, key)
	return true, nil
}

func (m *MockRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	if m.SetObjFunc != nil {
		return m.SetObjFunc(ctx, key, obj, ttl)
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(b)
	return nil
}

func (m *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	if m.GetObjFunc != nil {
		return m.GetObjFunc(ctx, key, v)
	}

	m.mu.Lock()
	s, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return redis.Nil
	}

	return json.Unmarshal([]byte(s), v)
}
