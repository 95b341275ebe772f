package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medlens/internal/service"
)

// MockDeviceService is a mock implementation of service.DeviceService.
type MockDeviceService struct {
	mock.Mock
}

func (m *MockDeviceService) Register(ctx context.Context) (*service.DeviceToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeviceToken), args.Error(1)
}

func (m *MockDeviceService) ValidateToken(tokenString string) (*service.DeviceClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeviceClaims), args.Error(1)
}
