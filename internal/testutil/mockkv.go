package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockKV is a mock for storage.KV.
type MockKV struct {
	mock.Mock
}

func (m *MockKV) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockKV) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKV) Remove(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}
