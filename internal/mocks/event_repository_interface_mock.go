// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/idgrid/user-service/internal/repository"
)

type MockEventRepositoryInterface struct {
	mock.Mock
}

func (m *MockEventRepositoryInterface) Create(ctx context.Context, event *repository.EventDocument) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepositoryInterface) CreateMany(ctx context.Context, events []*repository.EventDocument) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventRepositoryInterface) Query(ctx context.Context, opts repository.EventQueryOptions) ([]*repository.EventDocument, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.EventDocument), args.Error(1)
}

func (m *MockEventRepositoryInterface) Count(ctx context.Context, opts repository.EventQueryOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}
