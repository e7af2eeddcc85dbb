package service

import (
	"context"
	"time"

	"quizgen/internal/adapter/extractor"
	"quizgen/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockChatModel ---
type MockChatModel struct {
	mock.Mock
}

func (m *MockChatModel) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// --- MockContextExtractor ---
type MockContextExtractor struct {
	mock.Mock
}

func (m *MockContextExtractor) Extract(ctx context.Context, kind extractor.Kind, data []byte) (*extractor.Result, error) {
	args := m.Called(ctx, kind, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extractor.Result), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
