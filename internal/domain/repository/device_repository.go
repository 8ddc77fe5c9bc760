// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"pushgate/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrDeviceNotFound is returned when a device is not found.
var ErrDeviceNotFound = errors.New("device not found")

// DeviceRepository defines the interface for device-related store operations.
// The persistence layer is an external collaborator; implementations are
// plain CRUD and never enforce business rules.
type DeviceRepository interface {
	// Insert persists a new device record.
	Insert(ctx context.Context, device *entity.Device) error

	// Update replaces the mutable fields of an existing device record.
	Update(ctx context.Context, device *entity.Device) error

	// Delete removes a device record. Deleting an absent device returns
	// ErrDeviceNotFound.
	Delete(ctx context.Context, deviceID string) error

	// FindByDeviceID retrieves a device by its unique device ID.
	FindByDeviceID(ctx context.Context, deviceID string) (*entity.Device, error)

	// FindByUserID retrieves the device registered for a user in a tenant.
	FindByUserID(ctx context.Context, userID, tenantDomain string) (*entity.Device, error)

	// GetPublicKey retrieves only the stored public key of a device.
	GetPublicKey(ctx context.Context, deviceID string) (string, error)
}
