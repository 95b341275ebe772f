package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medlens/internal/domain"
	"medlens/internal/historyexport"
	"medlens/internal/service"
)

// MockAccountService is a mock implementation of service.AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) SignUp(ctx context.Context, deviceID string, input service.SignUpInput) (*domain.User, error) {
	args := m.Called(ctx, deviceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountService) LogIn(ctx context.Context, deviceID string, input service.LogInInput) (*domain.User, error) {
	args := m.Called(ctx, deviceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountService) LogOut(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func (m *MockAccountService) Me(ctx context.Context, deviceID string) (*domain.User, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountService) History(ctx context.Context, deviceID string) ([]domain.MedicalAnalysis, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MedicalAnalysis), args.Error(1)
}

func (m *MockAccountService) GetAnalysis(ctx context.Context, deviceID, analysisID string) (*domain.MedicalAnalysis, error) {
	args := m.Called(ctx, deviceID, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MedicalAnalysis), args.Error(1)
}

func (m *MockAccountService) ExportHistory(ctx context.Context, deviceID string, format historyexport.Format) (*service.Export, error) {
	args := m.Called(ctx, deviceID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Export), args.Error(1)
}
