package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pushgate/internal/domain/entity"
	domainerrors "pushgate/internal/domain/errors"
	"pushgate/internal/domain/repository"
	"pushgate/internal/domain/service"
	mockRepo "pushgate/internal/mocks/repository"
	mockSvc "pushgate/internal/mocks/service"
	"pushgate/internal/usecase"
)

// deviceServiceFixtures holds all test dependencies for device service tests.
type deviceServiceFixtures struct {
	service   usecase.DeviceUsecase
	repo      *mockRepo.MockDeviceRepository
	store     *mockRepo.MockRegistrationContextStore
	verifier  *mockSvc.MockSignatureVerifier
	validator *mockSvc.MockChallengeTokenValidator
	users     *mockSvc.MockUserResolver
	orgs      *mockSvc.MockOrganizationResolver
	senders   *mockSvc.MockSenderRegistry
	provider  *mockSvc.MockPushProvider
	qr        *mockSvc.MockQRCodeService
	events    *mockSvc.MockEventPublisher
}

func createTestDeviceService(t *testing.T) deviceServiceFixtures {
	repo := mockRepo.NewMockDeviceRepository(t)
	store := mockRepo.NewMockRegistrationContextStore(t)
	verifier := mockSvc.NewMockSignatureVerifier(t)
	validator := mockSvc.NewMockChallengeTokenValidator(t)
	users := mockSvc.NewMockUserResolver(t)
	orgs := mockSvc.NewMockOrganizationResolver(t)
	senders := mockSvc.NewMockSenderRegistry(t)
	provider := mockSvc.NewMockPushProvider(t, "FCM")
	qr := mockSvc.NewMockQRCodeService(t)
	events := mockSvc.NewMockEventPublisher(t)

	service := NewDeviceService(DeviceServiceParams{
		DeviceRepo:        repo,
		ContextStore:      store,
		SignatureVerifier: verifier,
		TokenValidator:    validator,
		UserResolver:      users,
		OrgResolver:       orgs,
		SenderRegistry:    senders,
		Providers:         []service.PushProvider{provider},
		QRCode:            qr,
		EventPublisher:    events,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		Host:              "https://auth.example.com",
		NotificationTitle: "Sign in request",
		NotificationBody:  "Approve the sign in attempt",
	})

	return deviceServiceFixtures{
		service:   service,
		repo:      repo,
		store:     store,
		verifier:  verifier,
		validator: validator,
		users:     users,
		orgs:      orgs,
		senders:   senders,
		provider:  provider,
		qr:        qr,
		events:    events,
	}
}

func fcmSender() entity.PushSender {
	return entity.PushSender{
		Name:       "push-sender",
		Provider:   "FCM",
		ProviderID: "provider-1",
		Properties: map[string]string{"serviceAccountContent": "ref"},
	}
}

func registeredDevice() *entity.Device {
	return &entity.Device{
		DeviceID:     "d1",
		UserID:       "u1",
		TenantDomain: "carbon.super",
		DeviceName:   "Pixel",
		DeviceModel:  "Pixel 9",
		DeviceToken:  "tok1",
		Provider:     "FCM",
		ProviderID:   "provider-1",
		PublicKey:    "stored-public-key",
	}
}

func registrationRequest() *entity.RegistrationRequest {
	return &entity.RegistrationRequest{
		DeviceID:    "d1",
		DeviceName:  "Pixel",
		DeviceModel: "Pixel 9",
		DeviceToken: "tok1",
		PublicKey:   "public-key-b64",
		Signature:   "signature-b64",
	}
}

func pendingContext() *entity.RegistrationContext {
	return &entity.RegistrationContext{
		Challenge:    "d1/c1",
		Username:     "alice",
		TenantDomain: "carbon.super",
	}
}

// --- discovery -----------------------------------------------------------

func TestDeviceService_RegistrationDiscovery(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.orgs.On("IsOrganization", ctx, "carbon.super").Return(false, nil)
	fx.store.On("Store", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("*entity.RegistrationContext"), "carbon.super").Return(nil)
	fx.qr.On("GenerateDiscoveryQR", mock.AnythingOfType("*entity.RegistrationDiscoveryData")).Return([]byte("png"), nil)

	result, err := fx.service.RegistrationDiscovery(ctx, "alice", "carbon.super", false)
	require.NoError(t, err)

	data := result.Data
	assert.NotEmpty(t, data.DeviceID)
	assert.NotEmpty(t, data.Challenge)
	assert.NotEqual(t, data.DeviceID, data.Challenge)
	assert.Equal(t, "alice", data.Username)
	assert.Equal(t, "https://auth.example.com", data.Host)
	assert.Equal(t, "/t/carbon.super", data.TenantPath)
	assert.Equal(t, "/push-auth/devices", data.RegistrationEndpoint)
	assert.Equal(t, "/push-auth/authenticate", data.AuthenticationEndpoint)
	assert.Equal(t, "/push-auth/devices/"+data.DeviceID+"/remove", data.RemoveDeviceEndpoint)
	assert.Empty(t, data.OrganizationPath)
	assert.Equal(t, []byte("png"), result.QR)
}

func TestDeviceService_RegistrationDiscovery_Organization(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.orgs.On("IsOrganization", ctx, "org.sub").Return(true, nil)
	fx.orgs.On("ResolveOrganization", ctx, "org.sub").Return(&entity.OrgInfo{
		OrganizationID:      "org-123",
		OrganizationName:    "Example Org",
		PrimaryTenantDomain: "carbon.super",
	}, nil)
	fx.store.On("Store", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("*entity.RegistrationContext"), "org.sub").Return(nil)
	fx.qr.On("GenerateDiscoveryQR", mock.Anything).Return([]byte("png"), nil)

	result, err := fx.service.RegistrationDiscovery(ctx, "alice", "org.sub", true)
	require.NoError(t, err)

	data := result.Data
	assert.Equal(t, "org-123", data.OrganizationID)
	assert.Equal(t, "Example Org", data.OrganizationName)
	assert.Equal(t, "/o/org-123", data.OrganizationPath)
	assert.Equal(t, "carbon.super", data.TenantDomain)
	assert.Equal(t, "/t/carbon.super", data.TenantPath)
}

func TestDeviceService_RegistrationDiscovery_StoresForceFlag(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	var stored *entity.RegistrationContext
	fx.orgs.On("IsOrganization", ctx, "carbon.super").Return(false, nil)
	fx.store.On("Store", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("*entity.RegistrationContext"), "carbon.super").
		Run(func(args mock.Arguments) {
			stored = args.Get(2).(*entity.RegistrationContext)
		}).
		Return(nil)
	fx.qr.On("GenerateDiscoveryQR", mock.Anything).Return([]byte("png"), nil)

	_, err := fx.service.RegistrationDiscovery(ctx, "alice", "carbon.super", true)
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.True(t, stored.ForceRegistration)
	assert.False(t, stored.Registered)
	assert.Equal(t, "alice", stored.Username)
}

// --- registration state machine ------------------------------------------

func TestDeviceService_RegisterDevice_Success(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()
	req := registrationRequest()

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(pendingContext(), nil)
	fx.verifier.On("Verify", "public-key-b64", "signature-b64", "d1/c1", "tok1").Return(true, nil)
	fx.users.On("ResolveUserID", ctx, "alice", "carbon.super").Return("u1", nil)
	fx.repo.On("FindByUserID", ctx, "u1", "carbon.super").Return(nil, repository.ErrDeviceNotFound)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)
	fx.provider.On("RegisterDevice", ctx, mock.AnythingOfType("entity.PushDeviceData"), fcmSender()).Return(nil)
	fx.repo.On("Insert", ctx, mock.AnythingOfType("*entity.Device")).Return(nil)
	fx.store.On("Store", ctx, "d1", mock.AnythingOfType("*entity.RegistrationContext"), "carbon.super").Return(nil)
	fx.store.On("Clear", ctx, "d1", "carbon.super").Return(nil)
	fx.events.On("PublishDeviceEvent", ctx, mock.AnythingOfType("*service.DeviceEvent")).Return(nil)

	device, err := fx.service.RegisterDevice(ctx, req, "carbon.super")
	require.NoError(t, err)

	assert.Equal(t, "d1", device.DeviceID)
	assert.Equal(t, "u1", device.UserID)
	assert.Equal(t, "carbon.super", device.TenantDomain)
	assert.Equal(t, "FCM", device.Provider)
	assert.Equal(t, "provider-1", device.ProviderID)
	assert.Equal(t, "public-key-b64", device.PublicKey)
}

func TestDeviceService_RegisterDevice_ContextNotFound(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(nil, nil)

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")

	var notFound *domainerrors.RegistrationContextNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "d1", notFound.DeviceID)
}

func TestDeviceService_RegisterDevice_ContextAlreadyUsed(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	rc := pendingContext()
	rc.Registered = true
	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(rc, nil)
	fx.store.On("Clear", ctx, "d1", "carbon.super").Return(nil)

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")

	var used *domainerrors.RegistrationContextUsedError
	require.ErrorAs(t, err, &used)
}

func TestDeviceService_RegisterDevice_InvalidSignature(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(pendingContext(), nil)
	fx.verifier.On("Verify", "public-key-b64", "signature-b64", "d1/c1", "tok1").Return(false, nil)

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")

	var invalid *domainerrors.InvalidSignatureError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "d1", invalid.DeviceID)
}

func TestDeviceService_RegisterDevice_VerifierFailure(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(pendingContext(), nil)
	fx.verifier.On("Verify", "public-key-b64", "signature-b64", "d1/c1", "tok1").
		Return(false, errors.New("key is not parseable"))

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")

	var verification *domainerrors.SignatureVerificationError
	require.ErrorAs(t, err, &verification)
	assert.Equal(t, "d1", verification.DeviceID)
}

func TestDeviceService_RegisterDevice_UserResolutionFailure(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(pendingContext(), nil)
	fx.verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	fx.users.On("ResolveUserID", ctx, "alice", "carbon.super").Return("", errors.New("user store down"))

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")

	var resolution *domainerrors.UserResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.Equal(t, "alice", resolution.Username)
}

func TestDeviceService_RegisterDevice_AlreadyRegistered(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(pendingContext(), nil)
	fx.verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	fx.users.On("ResolveUserID", ctx, "alice", "carbon.super").Return("u1", nil)
	fx.repo.On("FindByUserID", ctx, "u1", "carbon.super").Return(registeredDevice(), nil)

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")

	var already *domainerrors.DeviceAlreadyRegisteredError
	require.ErrorAs(t, err, &already)
}

func TestDeviceService_RegisterDevice_ForceReplacesExisting(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	rc := pendingContext()
	rc.ForceRegistration = true
	existing := registeredDevice()
	existing.DeviceID = "d0"

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(rc, nil)
	fx.verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	fx.users.On("ResolveUserID", ctx, "alice", "carbon.super").Return("u1", nil)
	fx.repo.On("FindByUserID", ctx, "u1", "carbon.super").Return(existing, nil)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)

	fx.provider.On("UnregisterDevice", ctx, existing.PushDevice(), fcmSender()).Return(nil)
	fx.repo.On("Delete", ctx, "d0").Return(nil)

	fx.provider.On("RegisterDevice", ctx, mock.AnythingOfType("entity.PushDeviceData"), fcmSender()).Return(nil)
	fx.repo.On("Insert", ctx, mock.AnythingOfType("*entity.Device")).Return(nil)
	fx.store.On("Store", ctx, "d1", mock.AnythingOfType("*entity.RegistrationContext"), "carbon.super").Return(nil)
	fx.store.On("Clear", ctx, "d1", "carbon.super").Return(nil)
	fx.events.On("PublishDeviceEvent", ctx, mock.AnythingOfType("*service.DeviceEvent")).Return(nil)

	device, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")
	require.NoError(t, err)
	assert.Equal(t, "d1", device.DeviceID)
}

func TestDeviceService_RegisterDevice_ForceToleratesVanishedDevice(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	rc := pendingContext()
	rc.ForceRegistration = true
	existing := registeredDevice()
	existing.DeviceID = "d0"

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(rc, nil)
	fx.verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	fx.users.On("ResolveUserID", ctx, "alice", "carbon.super").Return("u1", nil)
	fx.repo.On("FindByUserID", ctx, "u1", "carbon.super").Return(existing, nil)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)

	// The old device vanished between lookup and delete.
	fx.provider.On("UnregisterDevice", ctx, existing.PushDevice(), fcmSender()).Return(nil)
	fx.repo.On("Delete", ctx, "d0").Return(repository.ErrDeviceNotFound)

	fx.provider.On("RegisterDevice", ctx, mock.AnythingOfType("entity.PushDeviceData"), fcmSender()).Return(nil)
	fx.repo.On("Insert", ctx, mock.AnythingOfType("*entity.Device")).Return(nil)
	fx.store.On("Store", ctx, "d1", mock.AnythingOfType("*entity.RegistrationContext"), "carbon.super").Return(nil)
	fx.store.On("Clear", ctx, "d1", "carbon.super").Return(nil)
	fx.events.On("PublishDeviceEvent", ctx, mock.AnythingOfType("*service.DeviceEvent")).Return(nil)

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")
	require.NoError(t, err)
}

func TestDeviceService_RegisterDevice_PersistFailureCompensates(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.store.On("Lookup", ctx, "d1", "carbon.super").Return(pendingContext(), nil)
	fx.verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	fx.users.On("ResolveUserID", ctx, "alice", "carbon.super").Return("u1", nil)
	fx.repo.On("FindByUserID", ctx, "u1", "carbon.super").Return(nil, repository.ErrDeviceNotFound)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)
	fx.provider.On("RegisterDevice", ctx, mock.AnythingOfType("entity.PushDeviceData"), fcmSender()).Return(nil)
	fx.repo.On("Insert", ctx, mock.AnythingOfType("*entity.Device")).Return(errors.New("connection lost"))
	fx.provider.On("UnregisterDevice", ctx, mock.AnythingOfType("entity.PushDeviceData"), fcmSender()).Return(nil)

	_, err := fx.service.RegisterDevice(ctx, registrationRequest(), "carbon.super")

	var regErr *domainerrors.DeviceRegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "d1", regErr.DeviceID)
}

// --- unregister family ---------------------------------------------------

func TestDeviceService_UnregisterDevice(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()
	device := registeredDevice()

	fx.repo.On("FindByDeviceID", ctx, "d1").Return(device, nil)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)
	fx.provider.On("UnregisterDevice", ctx, device.PushDevice(), fcmSender()).Return(nil)
	fx.repo.On("Delete", ctx, "d1").Return(nil)
	fx.events.On("PublishDeviceEvent", ctx, mock.AnythingOfType("*service.DeviceEvent")).Return(nil)

	require.NoError(t, fx.service.UnregisterDevice(ctx, "d1"))
}

func TestDeviceService_UnregisterDevice_NotFound(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("FindByDeviceID", ctx, "missing").Return(nil, repository.ErrDeviceNotFound)

	err := fx.service.UnregisterDevice(ctx, "missing")

	var notFound *domainerrors.DeviceNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeviceService_UnregisterDeviceByUserID(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()
	device := registeredDevice()

	fx.repo.On("FindByUserID", ctx, "u1", "carbon.super").Return(device, nil)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)
	fx.provider.On("UnregisterDevice", ctx, device.PushDevice(), fcmSender()).Return(nil)
	fx.repo.On("Delete", ctx, "d1").Return(nil)
	fx.events.On("PublishDeviceEvent", ctx, mock.AnythingOfType("*service.DeviceEvent")).Return(nil)

	require.NoError(t, fx.service.UnregisterDeviceByUserID(ctx, "u1", "carbon.super"))
}

func TestDeviceService_UnregisterDeviceByUserID_NotFound(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("FindByUserID", ctx, "u2", "carbon.super").Return(nil, repository.ErrDeviceNotFound)

	err := fx.service.UnregisterDeviceByUserID(ctx, "u2", "carbon.super")

	var notFound *domainerrors.DeviceNotFoundForUserError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "u2", notFound.UserID)
}

func TestDeviceService_UnregisterDeviceMobile(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()
	device := registeredDevice()
	claims := jwt.MapClaims{"tenantDomain": "carbon.super"}

	fx.repo.On("FindByDeviceID", ctx, "d1").Return(device, nil)
	fx.validator.On("ValidatedClaims", "token", "stored-public-key").Return(claims, nil)
	fx.validator.On("StringClaim", claims, "tenantDomain", "d1").Return("carbon.super", nil)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)
	fx.provider.On("UnregisterDevice", ctx, device.PushDevice(), fcmSender()).Return(nil)
	fx.repo.On("Delete", ctx, "d1").Return(nil)

	var published *service.DeviceEvent
	fx.events.On("PublishDeviceEvent", ctx, mock.AnythingOfType("*service.DeviceEvent")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*service.DeviceEvent)
		}).
		Return(nil)

	require.NoError(t, fx.service.UnregisterDeviceMobile(ctx, "d1", "token"))
	require.NotNil(t, published)
	assert.Equal(t, "mobile", published.Initiator)
}

func TestDeviceService_UnregisterDeviceMobile_InvalidToken(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("FindByDeviceID", ctx, "d1").Return(registeredDevice(), nil)
	fx.validator.On("ValidatedClaims", "bad-token", "stored-public-key").
		Return(nil, &domainerrors.TokenSignatureError{})

	err := fx.service.UnregisterDeviceMobile(ctx, "d1", "bad-token")

	var sigErr *domainerrors.TokenSignatureError
	require.ErrorAs(t, err, &sigErr)
}

func TestDeviceService_UnregisterDeviceMobile_TenantMismatch(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()
	claims := jwt.MapClaims{"tenantDomain": "other.tenant"}

	fx.repo.On("FindByDeviceID", ctx, "d1").Return(registeredDevice(), nil)
	fx.validator.On("ValidatedClaims", "token", "stored-public-key").Return(claims, nil)
	fx.validator.On("StringClaim", claims, "tenantDomain", "d1").Return("other.tenant", nil)

	err := fx.service.UnregisterDeviceMobile(ctx, "d1", "token")

	var claimErr *domainerrors.TokenClaimError
	require.ErrorAs(t, err, &claimErr)
	assert.Equal(t, "tenantDomain", claimErr.Claim)
}

// --- reads ---------------------------------------------------------------

func TestDeviceService_GetDevice(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("FindByDeviceID", ctx, "d1").Return(registeredDevice(), nil)

	device, err := fx.service.GetDevice(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", device.DeviceID)
}

func TestDeviceService_GetPublicKey(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("GetPublicKey", ctx, "d1").Return("stored-public-key", nil)

	key, err := fx.service.GetPublicKey(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "stored-public-key", key)
}

func TestDeviceService_GetPublicKey_NotFound(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("GetPublicKey", ctx, "missing").Return("", repository.ErrDeviceNotFound)

	_, err := fx.service.GetPublicKey(ctx, "missing")

	var notFound *domainerrors.PublicKeyNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeviceService_GetPublicKey_EmptyKey(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("GetPublicKey", ctx, "d1").Return("", nil)

	_, err := fx.service.GetPublicKey(ctx, "d1")

	var notFound *domainerrors.PublicKeyNotFoundError
	require.ErrorAs(t, err, &notFound)
}

// --- edit ----------------------------------------------------------------

func TestDeviceService_EditDevice(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()
	device := registeredDevice()

	fx.repo.On("FindByDeviceID", ctx, "d1").Return(device, nil)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)
	fx.provider.On("UpdateDevice", ctx, mock.AnythingOfType("entity.PushDeviceData"), fcmSender()).Return(nil)

	var updated *entity.Device
	fx.repo.On("Update", ctx, mock.AnythingOfType("*entity.Device")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*entity.Device)
		}).
		Return(nil)
	fx.events.On("PublishDeviceEvent", ctx, mock.AnythingOfType("*service.DeviceEvent")).Return(nil)

	err := fx.service.EditDevice(ctx, "d1", []usecase.DeviceEdit{
		{Path: usecase.EditPathDeviceName, Value: "New name"},
		{Path: usecase.EditPathDeviceToken, Value: "tok2"},
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, "New name", updated.DeviceName)
	assert.Equal(t, "tok2", updated.DeviceToken)
}

func TestDeviceService_EditDevice_InvalidPath(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	// No repository or provider expectations: the whitelist rejects the
	// request before any side effect.
	err := fx.service.EditDevice(ctx, "d1", []usecase.DeviceEdit{
		{Path: usecase.EditPathDeviceName, Value: "New name"},
		{Path: "/public-key", Value: "attacker-key"},
	})

	var invalid *domainerrors.InvalidEditScenarioError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "/public-key", invalid.Path)
}

// --- notification --------------------------------------------------------

func TestDeviceService_SendAuthNotification(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()
	device := registeredDevice()

	fx.repo.On("FindByUserID", ctx, "u1", "carbon.super").Return(device, nil)
	fx.senders.On("ListPushSenders", ctx, "carbon.super").Return([]entity.PushSender{fcmSender()}, nil)
	fx.orgs.On("IsOrganization", ctx, "carbon.super").Return(false, nil)

	var sent entity.PushNotificationData
	fx.provider.On("SendNotification", ctx, mock.AnythingOfType("entity.PushNotificationData"), fcmSender(), "carbon.super").
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(entity.PushNotificationData)
		}).
		Return(nil)

	err := fx.service.SendAuthNotification(ctx, &usecase.AuthNotificationRequest{
		UserID:          "u1",
		TenantDomain:    "carbon.super",
		PushID:          "push-1",
		Challenge:       "d1/c1",
		NumberChallenge: "42",
		ApplicationName: "console",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sign in request", sent.NotificationTitle)
	assert.Equal(t, "tok1", sent.DeviceToken)
	assert.Equal(t, "d1", sent.DeviceID)
	assert.Equal(t, "d1/c1", sent.Challenge)
	assert.Equal(t, "AUTHENTICATION", sent.NotificationScenario)
}

func TestDeviceService_SendAuthNotification_NoDevice(t *testing.T) {
	fx := createTestDeviceService(t)
	ctx := context.Background()

	fx.repo.On("FindByUserID", ctx, "u2", "carbon.super").Return(nil, repository.ErrDeviceNotFound)

	err := fx.service.SendAuthNotification(ctx, &usecase.AuthNotificationRequest{
		UserID:       "u2",
		TenantDomain: "carbon.super",
	})

	var notFound *domainerrors.DeviceNotFoundForUserError
	require.ErrorAs(t, err, &notFound)
}
