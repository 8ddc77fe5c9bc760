// Package repository contains test doubles for the repository interfaces.
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"pushgate/internal/domain/entity"
)

// MockDeviceRepository is a mock implementation of repository.DeviceRepository.
type MockDeviceRepository struct {
	mock.Mock
}

// NewMockDeviceRepository creates a mock wired to the test lifecycle.
func NewMockDeviceRepository(t *testing.T) *MockDeviceRepository {
	m := &MockDeviceRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockDeviceRepository) Insert(ctx context.Context, device *entity.Device) error {
	args := m.Called(ctx, device)

	return args.Error(0)
}

func (m *MockDeviceRepository) Update(ctx context.Context, device *entity.Device) error {
	args := m.Called(ctx, device)

	return args.Error(0)
}

func (m *MockDeviceRepository) Delete(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)

	return args.Error(0)
}

func (m *MockDeviceRepository) FindByDeviceID(ctx context.Context, deviceID string) (*entity.Device, error) {
	args := m.Called(ctx, deviceID)
	if device, ok := args.Get(0).(*entity.Device); ok {
		return device, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDeviceRepository) FindByUserID(ctx context.Context, userID, tenantDomain string) (*entity.Device, error) {
	args := m.Called(ctx, userID, tenantDomain)
	if device, ok := args.Get(0).(*entity.Device); ok {
		return device, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockDeviceRepository) GetPublicKey(ctx context.Context, deviceID string) (string, error) {
	args := m.Called(ctx, deviceID)

	return args.String(0), args.Error(1)
}
