package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"pushgate/internal/domain/entity"
)

// MockRegistrationContextStore is a mock implementation of
// repository.RegistrationContextStore.
type MockRegistrationContextStore struct {
	mock.Mock
}

// NewMockRegistrationContextStore creates a mock wired to the test lifecycle.
func NewMockRegistrationContextStore(t *testing.T) *MockRegistrationContextStore {
	m := &MockRegistrationContextStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRegistrationContextStore) Store(ctx context.Context, deviceID string, rc *entity.RegistrationContext, tenantDomain string) error {
	args := m.Called(ctx, deviceID, rc, tenantDomain)

	return args.Error(0)
}

func (m *MockRegistrationContextStore) Lookup(ctx context.Context, deviceID, tenantDomain string) (*entity.RegistrationContext, error) {
	args := m.Called(ctx, deviceID, tenantDomain)
	if rc, ok := args.Get(0).(*entity.RegistrationContext); ok {
		return rc, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockRegistrationContextStore) Clear(ctx context.Context, deviceID, tenantDomain string) error {
	args := m.Called(ctx, deviceID, tenantDomain)

	return args.Error(0)
}
