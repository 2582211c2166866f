package use_case

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/trunov/resizer/internal/entities"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockStorage) Put(ctx context.Context, bucket, key string, body []byte) error {
	args := m.Called(ctx, bucket, key, body)
	return args.Error(0)
}

type MockTransformer struct {
	mock.Mock
}

func NewMockTransformer() *MockTransformer {
	return &MockTransformer{}
}

func (m *MockTransformer) Transform(ctx context.Context, input []byte, conversion entities.ConversionSpec) ([]byte, error) {
	args := m.Called(ctx, input, conversion)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}
