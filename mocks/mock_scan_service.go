package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medlens/internal/domain"
	"medlens/internal/scan"
	"medlens/internal/service"
)

// MockScanService is a mock implementation of service.ScanService.
type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) snapshot(args mock.Arguments) (*scan.Snapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scan.Snapshot), args.Error(1)
}

func (m *MockScanService) Snapshot(ctx context.Context, deviceID string) (*scan.Snapshot, error) {
	return m.snapshot(m.Called(ctx, deviceID))
}

func (m *MockScanService) SelectFile(ctx context.Context, deviceID string, input service.SelectFileInput) (*scan.Snapshot, error) {
	return m.snapshot(m.Called(ctx, deviceID, input))
}

func (m *MockScanService) SetCityTier(ctx context.Context, deviceID string, tier domain.CityTier) (*scan.Snapshot, error) {
	return m.snapshot(m.Called(ctx, deviceID, tier))
}

func (m *MockScanService) Analyze(ctx context.Context, deviceID string) (*domain.MedicalAnalysis, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MedicalAnalysis), args.Error(1)
}

func (m *MockScanService) Reset(ctx context.Context, deviceID string) (*scan.Snapshot, error) {
	return m.snapshot(m.Called(ctx, deviceID))
}

func (m *MockScanService) ShowHistory(ctx context.Context, deviceID, analysisID string) (*scan.Snapshot, error) {
	return m.snapshot(m.Called(ctx, deviceID, analysisID))
}
