// Package usecase contains test doubles for the use case interfaces.
package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"pushgate/internal/domain/entity"
	"pushgate/internal/usecase"
)

// MockDeviceUsecase is a mock implementation of usecase.DeviceUsecase.
type MockDeviceUsecase struct {
	mock.Mock
}

// NewMockDeviceUsecase creates a mock wired to the test lifecycle.
func NewMockDeviceUsecase(t *testing.T) *MockDeviceUsecase {
	m := &MockDeviceUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockDeviceUsecase) RegistrationDiscovery(ctx context.Context, username, tenantDomain string, forceRegistration bool) (*usecase.DiscoveryResult, error) {
	args := m.Called(ctx, username, tenantDomain, forceRegistration)
	if result, ok := args.Get(0).(*usecase.DiscoveryResult); ok {
		return result, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDeviceUsecase) RegisterDevice(ctx context.Context, req *entity.RegistrationRequest, tenantDomain string) (*entity.Device, error) {
	args := m.Called(ctx, req, tenantDomain)
	if device, ok := args.Get(0).(*entity.Device); ok {
		return device, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDeviceUsecase) UnregisterDevice(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)

	return args.Error(0)
}

func (m *MockDeviceUsecase) UnregisterDeviceByUserID(ctx context.Context, userID, tenantDomain string) error {
	args := m.Called(ctx, userID, tenantDomain)

	return args.Error(0)
}

func (m *MockDeviceUsecase) UnregisterDeviceMobile(ctx context.Context, deviceID, token string) error {
	args := m.Called(ctx, deviceID, token)

	return args.Error(0)
}

func (m *MockDeviceUsecase) GetDevice(ctx context.Context, deviceID string) (*entity.Device, error) {
	args := m.Called(ctx, deviceID)
	if device, ok := args.Get(0).(*entity.Device); ok {
		return device, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDeviceUsecase) GetDeviceByUserID(ctx context.Context, userID, tenantDomain string) (*entity.Device, error) {
	args := m.Called(ctx, userID, tenantDomain)
	if device, ok := args.Get(0).(*entity.Device); ok {
		return device, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDeviceUsecase) GetPublicKey(ctx context.Context, deviceID string) (string, error) {
	args := m.Called(ctx, deviceID)

	return args.String(0), args.Error(1)
}

func (m *MockDeviceUsecase) EditDevice(ctx context.Context, deviceID string, edits []usecase.DeviceEdit) error {
	args := m.Called(ctx, deviceID, edits)

	return args.Error(0)
}

func (m *MockDeviceUsecase) SendAuthNotification(ctx context.Context, req *usecase.AuthNotificationRequest) error {
	args := m.Called(ctx, req)

	return args.Error(0)
}
