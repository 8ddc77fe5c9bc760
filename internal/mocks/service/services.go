// Package service contains test doubles for the domain service interfaces.
package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"

	"pushgate/internal/domain/entity"
	"pushgate/internal/domain/service"
)

// MockSignatureVerifier is a mock implementation of service.SignatureVerifier.
type MockSignatureVerifier struct {
	mock.Mock
}

// NewMockSignatureVerifier creates a mock wired to the test lifecycle.
func NewMockSignatureVerifier(t *testing.T) *MockSignatureVerifier {
	m := &MockSignatureVerifier{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSignatureVerifier) Verify(publicKey, signature, challenge, deviceToken string) (bool, error) {
	args := m.Called(publicKey, signature, challenge, deviceToken)

	return args.Bool(0), args.Error(1)
}

// MockChallengeTokenValidator is a mock implementation of
// service.ChallengeTokenValidator.
type MockChallengeTokenValidator struct {
	mock.Mock
}

// NewMockChallengeTokenValidator creates a mock wired to the test lifecycle.
func NewMockChallengeTokenValidator(t *testing.T) *MockChallengeTokenValidator {
	m := &MockChallengeTokenValidator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockChallengeTokenValidator) ValidatedClaims(token, publicKey string) (jwt.MapClaims, error) {
	args := m.Called(token, publicKey)
	if claims, ok := args.Get(0).(jwt.MapClaims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockChallengeTokenValidator) StringClaim(claims jwt.MapClaims, claim, deviceID string) (string, error) {
	args := m.Called(claims, claim, deviceID)

	return args.String(0), args.Error(1)
}

func (m *MockChallengeTokenValidator) ValidateChallenge(claims jwt.MapClaims, claim, expected, deviceID string) bool {
	args := m.Called(claims, claim, expected, deviceID)

	return args.Bool(0)
}

// MockUserResolver is a mock implementation of service.UserResolver.
type MockUserResolver struct {
	mock.Mock
}

// NewMockUserResolver creates a mock wired to the test lifecycle.
func NewMockUserResolver(t *testing.T) *MockUserResolver {
	m := &MockUserResolver{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserResolver) ResolveUserID(ctx context.Context, username, tenantDomain string) (string, error) {
	args := m.Called(ctx, username, tenantDomain)

	return args.String(0), args.Error(1)
}

// MockOrganizationResolver is a mock implementation of
// service.OrganizationResolver.
type MockOrganizationResolver struct {
	mock.Mock
}

// NewMockOrganizationResolver creates a mock wired to the test lifecycle.
func NewMockOrganizationResolver(t *testing.T) *MockOrganizationResolver {
	m := &MockOrganizationResolver{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOrganizationResolver) IsOrganization(ctx context.Context, tenantDomain string) (bool, error) {
	args := m.Called(ctx, tenantDomain)

	return args.Bool(0), args.Error(1)
}

func (m *MockOrganizationResolver) ResolveOrganization(ctx context.Context, tenantDomain string) (*entity.OrgInfo, error) {
	args := m.Called(ctx, tenantDomain)
	if info, ok := args.Get(0).(*entity.OrgInfo); ok {
		return info, args.Error(1)
	}

	return nil, args.Error(1)
}

// MockSenderRegistry is a mock implementation of service.SenderRegistry.
type MockSenderRegistry struct {
	mock.Mock
}

// NewMockSenderRegistry creates a mock wired to the test lifecycle.
func NewMockSenderRegistry(t *testing.T) *MockSenderRegistry {
	m := &MockSenderRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSenderRegistry) ListPushSenders(ctx context.Context, tenantDomain string) ([]entity.PushSender, error) {
	args := m.Called(ctx, tenantDomain)
	if senders, ok := args.Get(0).([]entity.PushSender); ok {
		return senders, args.Error(1)
	}

	return nil, args.Error(1)
}

// MockPushProvider is a mock implementation of service.PushProvider.
type MockPushProvider struct {
	mock.Mock

	name string
}

// NewMockPushProvider creates a mock wired to the test lifecycle.
func NewMockPushProvider(t *testing.T, name string) *MockPushProvider {
	m := &MockPushProvider{name: name}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPushProvider) Name() string { return m.name }

func (m *MockPushProvider) SendNotification(ctx context.Context, data entity.PushNotificationData, sender entity.PushSender, tenantDomain string) error {
	args := m.Called(ctx, data, sender, tenantDomain)

	return args.Error(0)
}

func (m *MockPushProvider) RegisterDevice(ctx context.Context, device entity.PushDeviceData, sender entity.PushSender) error {
	args := m.Called(ctx, device, sender)

	return args.Error(0)
}

func (m *MockPushProvider) UnregisterDevice(ctx context.Context, device entity.PushDeviceData, sender entity.PushSender) error {
	args := m.Called(ctx, device, sender)

	return args.Error(0)
}

func (m *MockPushProvider) UpdateDevice(ctx context.Context, device entity.PushDeviceData, sender entity.PushSender) error {
	args := m.Called(ctx, device, sender)

	return args.Error(0)
}

func (m *MockPushProvider) PreProcessProperties(sender entity.PushSender) (map[string]string, error) {
	args := m.Called(sender)
	if props, ok := args.Get(0).(map[string]string); ok {
		return props, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockPushProvider) PostProcessProperties(sender entity.PushSender) (map[string]string, error) {
	args := m.Called(sender)
	if props, ok := args.Get(0).(map[string]string); ok {
		return props, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockPushProvider) UpdateCredentials(sender entity.PushSender, tenantDomain string) error {
	args := m.Called(sender, tenantDomain)

	return args.Error(0)
}

func (m *MockPushProvider) StoreSecretProperties(ctx context.Context, sender entity.PushSender) (map[string]string, error) {
	args := m.Called(ctx, sender)
	if props, ok := args.Get(0).(map[string]string); ok {
		return props, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockPushProvider) RetrieveSecretProperties(ctx context.Context, sender entity.PushSender) (map[string]string, error) {
	args := m.Called(ctx, sender)
	if props, ok := args.Get(0).(map[string]string); ok {
		return props, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockPushProvider) DeleteSecretProperties(ctx context.Context, sender entity.PushSender) error {
	args := m.Called(ctx, sender)

	return args.Error(0)
}

// MockQRCodeService is a mock implementation of service.QRCodeService.
type MockQRCodeService struct {
	mock.Mock
}

// NewMockQRCodeService creates a mock wired to the test lifecycle.
func NewMockQRCodeService(t *testing.T) *MockQRCodeService {
	m := &MockQRCodeService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockQRCodeService) GenerateDiscoveryQR(data *entity.RegistrationDiscoveryData) ([]byte, error) {
	args := m.Called(data)
	if png, ok := args.Get(0).([]byte); ok {
		return png, args.Error(1)
	}

	return nil, args.Error(1)
}

// MockEventPublisher is a mock implementation of service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

// NewMockEventPublisher creates a mock wired to the test lifecycle.
func NewMockEventPublisher(t *testing.T) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockEventPublisher) PublishDeviceEvent(ctx context.Context, event *service.DeviceEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()

	return args.Error(0)
}
