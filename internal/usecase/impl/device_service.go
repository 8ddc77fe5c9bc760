// Package impl contains the concrete use case implementations.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"pushgate/internal/domain/entity"
	domainerrors "pushgate/internal/domain/errors"
	"pushgate/internal/domain/repository"
	"pushgate/internal/domain/service"
	"pushgate/internal/usecase"
)

// Endpoint paths advertised in the discovery payload.
const (
	registrationEndpoint   = "/push-auth/devices"
	authenticationEndpoint = "/push-auth/authenticate"
	removeDeviceEndpoint   = "/push-auth/devices/%s/remove"
)

// DeviceServiceParams carries the collaborators of the device service.
type DeviceServiceParams struct {
	DeviceRepo        repository.DeviceRepository
	ContextStore      repository.RegistrationContextStore
	SignatureVerifier service.SignatureVerifier
	TokenValidator    service.ChallengeTokenValidator
	UserResolver      service.UserResolver
	OrgResolver       service.OrganizationResolver
	SenderRegistry    service.SenderRegistry
	Providers         []service.PushProvider
	QRCode            service.QRCodeService
	EventPublisher    service.EventPublisher
	Logger            *slog.Logger

	// Host is the externally visible base URL advertised during discovery.
	Host string

	// NotificationTitle and NotificationBody are the visible defaults for
	// authentication push messages.
	NotificationTitle string
	NotificationBody  string
}

type deviceService struct {
	deviceRepo        repository.DeviceRepository
	contextStore      repository.RegistrationContextStore
	signatureVerifier service.SignatureVerifier
	tokenValidator    service.ChallengeTokenValidator
	userResolver      service.UserResolver
	orgResolver       service.OrganizationResolver
	senderRegistry    service.SenderRegistry
	providers         map[string]service.PushProvider
	qrcode            service.QRCodeService
	events            service.EventPublisher
	logger            *slog.Logger

	host              string
	notificationTitle string
	notificationBody  string
}

// NewDeviceService creates a new device service instance.
func NewDeviceService(params DeviceServiceParams) usecase.DeviceUsecase {
	providers := make(map[string]service.PushProvider, len(params.Providers))
	for _, p := range params.Providers {
		providers[p.Name()] = p
	}

	return &deviceService{
		deviceRepo:        params.DeviceRepo,
		contextStore:      params.ContextStore,
		signatureVerifier: params.SignatureVerifier,
		tokenValidator:    params.TokenValidator,
		userResolver:      params.UserResolver,
		orgResolver:       params.OrgResolver,
		senderRegistry:    params.SenderRegistry,
		providers:         providers,
		qrcode:            params.QRCode,
		events:            params.EventPublisher,
		logger:            params.Logger,
		host:              params.Host,
		notificationTitle: params.NotificationTitle,
		notificationBody:  params.NotificationBody,
	}
}

// RegistrationDiscovery opens a pending registration for the user.
func (s *deviceService) RegistrationDiscovery(ctx context.Context, username, tenantDomain string, forceRegistration bool) (*usecase.DiscoveryResult, error) {
	deviceID := uuid.NewString()
	challenge := uuid.NewString()

	data := &entity.RegistrationDiscoveryData{
		DeviceID:               deviceID,
		Challenge:              challenge,
		Username:               username,
		Host:                   s.host,
		TenantDomain:           tenantDomain,
		TenantPath:             "/t/" + tenantDomain,
		RegistrationEndpoint:   registrationEndpoint,
		AuthenticationEndpoint: authenticationEndpoint,
		RemoveDeviceEndpoint:   fmt.Sprintf(removeDeviceEndpoint, deviceID),
	}

	isOrg, err := s.orgResolver.IsOrganization(ctx, tenantDomain)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve tenant organization status")
	}
	if isOrg {
		orgInfo, err := s.orgResolver.ResolveOrganization(ctx, tenantDomain)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve organization")
		}

		data.OrganizationID = orgInfo.OrganizationID
		data.OrganizationName = orgInfo.OrganizationName
		data.OrganizationPath = "/o/" + orgInfo.OrganizationID
		if orgInfo.PrimaryTenantDomain != "" {
			data.TenantDomain = orgInfo.PrimaryTenantDomain
			data.TenantPath = "/t/" + orgInfo.PrimaryTenantDomain
		}
	}

	rc := &entity.RegistrationContext{
		Challenge:         challenge,
		Username:          username,
		TenantDomain:      tenantDomain,
		ForceRegistration: forceRegistration,
	}
	if err := s.contextStore.Store(ctx, deviceID, rc, tenantDomain); err != nil {
		return nil, &domainerrors.DeviceRegistrationError{DeviceID: deviceID, Cause: err}
	}

	qr, err := s.qrcode.GenerateDiscoveryQR(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render discovery QR code")
	}

	s.logger.Debug("registration discovery opened",
		slog.String("deviceID", deviceID),
		slog.String("tenantDomain", tenantDomain))

	return &usecase.DiscoveryResult{Data: data, QR: qr}, nil
}

// RegisterDevice completes a pending registration. The steps run in a fixed
// order so every failure maps onto exactly one error kind.
func (s *deviceService) RegisterDevice(ctx context.Context, req *entity.RegistrationRequest, tenantDomain string) (*entity.Device, error) {
	rc, err := s.contextStore.Lookup(ctx, req.DeviceID, tenantDomain)
	if err != nil {
		return nil, &domainerrors.DeviceRegistrationError{DeviceID: req.DeviceID, Cause: err}
	}
	if rc == nil {
		return nil, &domainerrors.RegistrationContextNotFoundError{DeviceID: req.DeviceID}
	}

	if rc.Registered {
		if err := s.contextStore.Clear(ctx, req.DeviceID, tenantDomain); err != nil {
			s.logger.Error("failed to clear consumed registration context",
				slog.String("deviceID", req.DeviceID),
				slog.Any("error", err))
		}

		return nil, &domainerrors.RegistrationContextUsedError{DeviceID: req.DeviceID}
	}

	ok, err := s.signatureVerifier.Verify(req.PublicKey, req.Signature, rc.Challenge, req.DeviceToken)
	if err != nil {
		return nil, &domainerrors.SignatureVerificationError{DeviceID: req.DeviceID, Cause: err}
	}
	if !ok {
		return nil, &domainerrors.InvalidSignatureError{DeviceID: req.DeviceID}
	}

	userID, err := s.userResolver.ResolveUserID(ctx, rc.Username, tenantDomain)
	if err != nil || userID == "" {
		return nil, &domainerrors.UserResolutionError{Username: rc.Username, Cause: err}
	}

	if err := s.enforceSingleDevice(ctx, userID, tenantDomain, rc.ForceRegistration, req.DeviceID); err != nil {
		return nil, err
	}

	sender, provider, err := s.resolveSender(ctx, tenantDomain)
	if err != nil {
		return nil, &domainerrors.DeviceRegistrationError{DeviceID: req.DeviceID, Cause: err}
	}

	now := time.Now()
	device := &entity.Device{
		DeviceID:     req.DeviceID,
		UserID:       userID,
		TenantDomain: tenantDomain,
		DeviceName:   req.DeviceName,
		DeviceModel:  req.DeviceModel,
		DeviceToken:  req.DeviceToken,
		Provider:     sender.Provider,
		ProviderID:   sender.ProviderID,
		PublicKey:    req.PublicKey,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := provider.RegisterDevice(ctx, device.PushDevice(), sender); err != nil {
		return nil, &domainerrors.DeviceRegistrationError{DeviceID: req.DeviceID, Cause: err}
	}

	if err := s.deviceRepo.Insert(ctx, device); err != nil {
		// Provider-side registration already happened; compensate so the two
		// sides do not drift, then surface the persistence failure.
		if unregErr := provider.UnregisterDevice(ctx, device.PushDevice(), sender); unregErr != nil {
			s.logger.Error("compensating provider de-registration failed",
				slog.String("deviceID", req.DeviceID),
				slog.Any("error", unregErr))
		}

		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}

		return nil, &domainerrors.DeviceRegistrationError{DeviceID: req.DeviceID, Cause: err}
	}

	rc.Registered = true
	if err := s.contextStore.Store(ctx, req.DeviceID, rc, tenantDomain); err != nil {
		s.logger.Error("failed to flag registration context as consumed",
			slog.String("deviceID", req.DeviceID),
			slog.Any("error", err))
	}
	if err := s.contextStore.Clear(ctx, req.DeviceID, tenantDomain); err != nil {
		s.logger.Error("failed to clear registration context",
			slog.String("deviceID", req.DeviceID),
			slog.Any("error", err))
	}

	s.publishEvent(ctx, &service.DeviceEvent{
		EventType:    service.EventDeviceRegistered,
		DeviceID:     device.DeviceID,
		UserID:       device.UserID,
		TenantDomain: device.TenantDomain,
		Provider:     device.Provider,
		Initiator:    "user",
	})

	return device, nil
}

// UnregisterDevice removes a device by its device ID.
func (s *deviceService) UnregisterDevice(ctx context.Context, deviceID string) error {
	device, err := s.findDevice(ctx, deviceID)
	if err != nil {
		return err
	}

	return s.removeDevice(ctx, device, "user")
}

// UnregisterDeviceByUserID removes the device registered for a user.
func (s *deviceService) UnregisterDeviceByUserID(ctx context.Context, userID, tenantDomain string) error {
	device, err := s.findDeviceByUser(ctx, userID, tenantDomain)
	if err != nil {
		return err
	}

	return s.removeDevice(ctx, device, "user")
}

// UnregisterDeviceMobile removes a device on behalf of the device itself. The
// presented token must verify against the public key stored at registration.
func (s *deviceService) UnregisterDeviceMobile(ctx context.Context, deviceID, token string) error {
	device, err := s.findDevice(ctx, deviceID)
	if err != nil {
		return err
	}

	claims, err := s.tokenValidator.ValidatedClaims(token, device.PublicKey)
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return err
		}

		return &domainerrors.SignatureVerificationError{DeviceID: deviceID, Cause: err}
	}

	tenant, err := s.tokenValidator.StringClaim(claims, "tenantDomain", deviceID)
	if err != nil {
		return err
	}
	if tenant != device.TenantDomain {
		return &domainerrors.TokenClaimError{
			Claim:    "tenantDomain",
			DeviceID: deviceID,
			Cause:    errors.New("claim does not match the device registration"),
		}
	}

	return s.removeDevice(ctx, device, "mobile")
}

// GetDevice retrieves a device by its device ID.
func (s *deviceService) GetDevice(ctx context.Context, deviceID string) (*entity.Device, error) {
	return s.findDevice(ctx, deviceID)
}

// GetDeviceByUserID retrieves the device registered for a user.
func (s *deviceService) GetDeviceByUserID(ctx context.Context, userID, tenantDomain string) (*entity.Device, error) {
	return s.findDeviceByUser(ctx, userID, tenantDomain)
}

// GetPublicKey retrieves the stored public key of a device.
func (s *deviceService) GetPublicKey(ctx context.Context, deviceID string) (string, error) {
	publicKey, err := s.deviceRepo.GetPublicKey(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return "", &domainerrors.PublicKeyNotFoundError{DeviceID: deviceID}
		}

		return "", &domainerrors.PersistenceError{Op: "getPublicKey", Cause: err}
	}
	if publicKey == "" {
		return "", &domainerrors.PublicKeyNotFoundError{DeviceID: deviceID}
	}

	return publicKey, nil
}

// EditDevice applies whitelisted mutations to a device. The whitelist is
// checked for every edit before any state changes.
func (s *deviceService) EditDevice(ctx context.Context, deviceID string, edits []usecase.DeviceEdit) error {
	for _, edit := range edits {
		if edit.Path != usecase.EditPathDeviceName && edit.Path != usecase.EditPathDeviceToken {
			return &domainerrors.InvalidEditScenarioError{DeviceID: deviceID, Path: edit.Path}
		}
	}

	device, err := s.findDevice(ctx, deviceID)
	if err != nil {
		return err
	}

	for _, edit := range edits {
		switch edit.Path {
		case usecase.EditPathDeviceName:
			device.DeviceName = edit.Value
		case usecase.EditPathDeviceToken:
			device.DeviceToken = edit.Value
		}
	}

	sender, provider, err := s.resolveSenderForDevice(ctx, device)
	if err != nil {
		return err
	}

	if err := provider.UpdateDevice(ctx, device.PushDevice(), sender); err != nil {
		return err
	}

	if err := s.deviceRepo.Update(ctx, device); err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return &domainerrors.DeviceNotFoundError{DeviceID: deviceID}
		}

		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return err
		}

		return &domainerrors.PersistenceError{Op: "update", Cause: err}
	}

	s.publishEvent(ctx, &service.DeviceEvent{
		EventType:    service.EventDeviceEdited,
		DeviceID:     device.DeviceID,
		UserID:       device.UserID,
		TenantDomain: device.TenantDomain,
		Provider:     device.Provider,
		Initiator:    "user",
	})

	return nil
}

// SendAuthNotification pushes an authentication challenge notification to the
// device registered for the user.
func (s *deviceService) SendAuthNotification(ctx context.Context, req *usecase.AuthNotificationRequest) error {
	device, err := s.findDeviceByUser(ctx, req.UserID, req.TenantDomain)
	if err != nil {
		return err
	}

	sender, provider, err := s.resolveSenderForDevice(ctx, device)
	if err != nil {
		return err
	}

	data := entity.PushNotificationData{
		NotificationTitle:    s.notificationTitle,
		NotificationBody:     s.notificationBody,
		TenantDomain:         req.TenantDomain,
		UserStoreDomain:      req.UserStoreDomain,
		ApplicationName:      req.ApplicationName,
		NotificationScenario: "AUTHENTICATION",
		PushID:               req.PushID,
		DeviceToken:          device.DeviceToken,
		DeviceID:             device.DeviceID,
		Challenge:            req.Challenge,
		NumberChallenge:      req.NumberChallenge,
		IPAddress:            req.IPAddress,
		DeviceOS:             req.DeviceOS,
		Browser:              req.Browser,
	}

	isOrg, err := s.orgResolver.IsOrganization(ctx, req.TenantDomain)
	if err == nil && isOrg {
		if orgInfo, orgErr := s.orgResolver.ResolveOrganization(ctx, req.TenantDomain); orgErr == nil {
			data.OrganizationID = orgInfo.OrganizationID
			data.OrganizationName = orgInfo.OrganizationName
		}
	}

	return provider.SendNotification(ctx, data, sender, req.TenantDomain)
}

// --- helpers -------------------------------------------------------------

func (s *deviceService) findDevice(ctx context.Context, deviceID string) (*entity.Device, error) {
	device, err := s.deviceRepo.FindByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return nil, &domainerrors.DeviceNotFoundError{DeviceID: deviceID}
		}

		return nil, &domainerrors.PersistenceError{Op: "findByDeviceID", Cause: err}
	}

	return device, nil
}

func (s *deviceService) findDeviceByUser(ctx context.Context, userID, tenantDomain string) (*entity.Device, error) {
	device, err := s.deviceRepo.FindByUserID(ctx, userID, tenantDomain)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return nil, &domainerrors.DeviceNotFoundForUserError{UserID: userID}
		}

		return nil, &domainerrors.PersistenceError{Op: "findByUserID", Cause: err}
	}

	return device, nil
}

// enforceSingleDevice applies the one-device-per-user rule, replacing the
// existing device when force registration was requested at discovery.
func (s *deviceService) enforceSingleDevice(ctx context.Context, userID, tenantDomain string, force bool, newDeviceID string) error {
	existing, err := s.deviceRepo.FindByUserID(ctx, userID, tenantDomain)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return nil
		}

		return &domainerrors.PersistenceError{Op: "findByUserID", Cause: err}
	}

	if !force {
		return &domainerrors.DeviceAlreadyRegisteredError{DeviceID: newDeviceID}
	}

	if err := s.removeDevice(ctx, existing, "user"); err != nil {
		// A vanished device is fine; the goal was to make room.
		var notFound *domainerrors.DeviceNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return err
	}

	return nil
}

// removeDevice de-registers the device from its provider and deletes the
// local record.
func (s *deviceService) removeDevice(ctx context.Context, device *entity.Device, initiator string) error {
	sender, provider, err := s.resolveSenderForDevice(ctx, device)
	if err != nil {
		return err
	}

	if err := provider.UnregisterDevice(ctx, device.PushDevice(), sender); err != nil {
		return err
	}

	if err := s.deviceRepo.Delete(ctx, device.DeviceID); err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return &domainerrors.DeviceNotFoundError{DeviceID: device.DeviceID}
		}

		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return err
		}

		return &domainerrors.PersistenceError{Op: "delete", Cause: err}
	}

	s.publishEvent(ctx, &service.DeviceEvent{
		EventType:    service.EventDeviceUnregistered,
		DeviceID:     device.DeviceID,
		UserID:       device.UserID,
		TenantDomain: device.TenantDomain,
		Provider:     device.Provider,
		Initiator:    initiator,
	})

	return nil
}

// resolveSender picks the tenant's configured sender that maps onto a known
// provider backend.
func (s *deviceService) resolveSender(ctx context.Context, tenantDomain string) (entity.PushSender, service.PushProvider, error) {
	senders, err := s.senderRegistry.ListPushSenders(ctx, tenantDomain)
	if err != nil {
		return entity.PushSender{}, nil, errors.Wrap(err, "failed to list push senders")
	}

	for _, sender := range senders {
		if provider, ok := s.providers[sender.Provider]; ok {
			return sender, provider, nil
		}
	}

	return entity.PushSender{}, nil, errors.Errorf("no push sender configured for tenant: %s", tenantDomain)
}

// resolveSenderForDevice picks the sender matching the provider the device
// was registered against.
func (s *deviceService) resolveSenderForDevice(ctx context.Context, device *entity.Device) (entity.PushSender, service.PushProvider, error) {
	provider, ok := s.providers[device.Provider]
	if !ok {
		return entity.PushSender{}, nil, &domainerrors.ProviderSendError{
			Provider: device.Provider,
			Cause:    errors.New("provider backend is not configured"),
		}
	}

	senders, err := s.senderRegistry.ListPushSenders(ctx, device.TenantDomain)
	if err != nil {
		return entity.PushSender{}, nil, errors.Wrap(err, "failed to list push senders")
	}

	for _, sender := range senders {
		if sender.Provider == device.Provider {
			return sender, provider, nil
		}
	}

	return entity.PushSender{}, nil, errors.Errorf("no push sender configured for provider: %s", device.Provider)
}

// publishEvent emits a lifecycle event. Publishing is best effort.
func (s *deviceService) publishEvent(ctx context.Context, event *service.DeviceEvent) {
	if err := s.events.PublishDeviceEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish device event",
			slog.String("eventType", event.EventType),
			slog.String("deviceID", event.DeviceID),
			slog.Any("error", err))
	}
}
