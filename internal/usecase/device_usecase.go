// Package usecase defines the application use case interfaces.
package usecase

import (
	"context"

	"pushgate/internal/domain/entity"
)

// Edit path selectors accepted by EditDevice.
const (
	EditPathDeviceName  = "/device-name"
	EditPathDeviceToken = "/device-token"
)

// DeviceEdit is one whitelisted mutation of a registered device.
type DeviceEdit struct {
	Path  string `json:"path" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// DiscoveryResult bundles the discovery payload with its QR rendering.
type DiscoveryResult struct {
	Data *entity.RegistrationDiscoveryData `json:"data"`
	QR   []byte                            `json:"qr,omitempty"`
}

// AuthNotificationRequest carries the contextual attributes of an
// authentication attempt to push to the user's registered device.
type AuthNotificationRequest struct {
	UserID          string `json:"userId" validate:"required"`
	TenantDomain    string `json:"tenantDomain" validate:"required"`
	PushID          string `json:"pushId"`
	Challenge       string `json:"challenge"`
	NumberChallenge string `json:"numberChallenge"`
	ApplicationName string `json:"applicationName"`
	UserStoreDomain string `json:"userStoreDomain"`
	IPAddress       string `json:"ipAddress"`
	DeviceOS        string `json:"deviceOS"`
	Browser         string `json:"browser"`
}

// DeviceUsecase defines the interface for push device management use cases.
type DeviceUsecase interface {
	// RegistrationDiscovery opens a pending registration: it mints a device
	// ID and challenge, stores the single-use registration context and
	// returns the discovery payload with its QR rendering.
	RegistrationDiscovery(ctx context.Context, username, tenantDomain string, forceRegistration bool) (*DiscoveryResult, error)

	// RegisterDevice completes a pending registration by consuming its
	// context, verifying the proof of key possession and persisting the
	// device binding.
	RegisterDevice(ctx context.Context, req *entity.RegistrationRequest, tenantDomain string) (*entity.Device, error)

	// UnregisterDevice removes a device by its device ID.
	UnregisterDevice(ctx context.Context, deviceID string) error

	// UnregisterDeviceByUserID removes the device registered for a user.
	UnregisterDeviceByUserID(ctx context.Context, userID, tenantDomain string) error

	// UnregisterDeviceMobile removes a device on behalf of the device itself.
	// The caller must present a challenge token signed with the device key.
	UnregisterDeviceMobile(ctx context.Context, deviceID, token string) error

	// GetDevice retrieves a device by its device ID.
	GetDevice(ctx context.Context, deviceID string) (*entity.Device, error)

	// GetDeviceByUserID retrieves the device registered for a user.
	GetDeviceByUserID(ctx context.Context, userID, tenantDomain string) (*entity.Device, error)

	// GetPublicKey retrieves the stored public key of a device.
	GetPublicKey(ctx context.Context, deviceID string) (string, error)

	// EditDevice applies whitelisted mutations to a device and propagates
	// them to the push provider.
	EditDevice(ctx context.Context, deviceID string, edits []DeviceEdit) error

	// SendAuthNotification pushes an authentication challenge notification
	// to the device registered for the user.
	SendAuthNotification(ctx context.Context, req *AuthNotificationRequest) error
}
