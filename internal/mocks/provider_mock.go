package mocks

import (
	"context"

	"github.com/benmeehan/gps-tracker/pkg/location"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of location.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CheckPermission(ctx context.Context) (location.Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).(location.Permission), args.Error(1)
}

func (m *MockProvider) GetLocation(ctx context.Context) (location.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).(location.Location), args.Error(1)
}

func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}
