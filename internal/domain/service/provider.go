// Package service defines the domain service interfaces implemented by the
// infrastructure layer or by external collaborators.
package service

import (
	"context"

	"pushgate/internal/domain/entity"
)

// PushProvider is the SPI implemented by concrete push delivery backends.
// Implementations translate provider-native failures into the typed provider
// errors of the domain error catalog.
type PushProvider interface {
	// Name returns the provider name, e.g. "FCM".
	Name() string

	// SendNotification delivers a push message to the device addressed by the
	// notification data, using the given sender configuration.
	SendNotification(ctx context.Context, data entity.PushNotificationData, sender entity.PushSender, tenantDomain string) error

	// RegisterDevice performs provider-side device registration. Backends
	// that need no device-side registration implement this as a no-op.
	RegisterDevice(ctx context.Context, device entity.PushDeviceData, sender entity.PushSender) error

	// UnregisterDevice removes the provider-side registration of a device.
	UnregisterDevice(ctx context.Context, device entity.PushDeviceData, sender entity.PushSender) error

	// UpdateDevice propagates device changes to the provider.
	UpdateDevice(ctx context.Context, device entity.PushDeviceData, sender entity.PushSender) error

	// PreProcessProperties decodes stored sender properties into a directly
	// usable form.
	PreProcessProperties(sender entity.PushSender) (map[string]string, error)

	// PostProcessProperties is the inverse of PreProcessProperties.
	PostProcessProperties(sender entity.PushSender) (map[string]string, error)

	// UpdateCredentials tears down any connection handle cached for the
	// sender so the next send picks up rotated credentials.
	UpdateCredentials(sender entity.PushSender, tenantDomain string) error

	// StoreSecretProperties moves secret-bearing properties into the vault,
	// returning the properties with plaintext replaced by opaque references.
	StoreSecretProperties(ctx context.Context, sender entity.PushSender) (map[string]string, error)

	// RetrieveSecretProperties resolves opaque references back to plaintext.
	RetrieveSecretProperties(ctx context.Context, sender entity.PushSender) (map[string]string, error)

	// DeleteSecretProperties removes the sender secrets from the vault.
	DeleteSecretProperties(ctx context.Context, sender entity.PushSender) error
}
