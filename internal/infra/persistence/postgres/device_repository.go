// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"pushgate/internal/domain/entity"
	domainerrors "pushgate/internal/domain/errors"
	"pushgate/internal/domain/repository"
	"pushgate/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// deviceRepository implements the repository.DeviceRepository interface.
type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository is the constructor for deviceRepository.
func NewDeviceRepository(db *gorm.DB) repository.DeviceRepository {
	return &deviceRepository{
		db: db,
	}
}

// Insert persists a new device record.
func (repo *deviceRepository) Insert(ctx context.Context, device *entity.Device) error {
	deviceM := fromDeviceDomain(device)

	if err := repo.db.WithContext(ctx).Create(deviceM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return &domainerrors.DeviceAlreadyRegisteredError{DeviceID: device.DeviceID}
		}

		return &domainerrors.PersistenceError{Op: "insert", Cause: err}
	}

	device.CreatedAt = deviceM.CreatedAt
	device.UpdatedAt = deviceM.UpdatedAt

	return nil
}

// Update replaces the mutable fields of an existing device record.
func (repo *deviceRepository) Update(ctx context.Context, device *entity.Device) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PushDeviceModel{}).
		Where("device_id = ?", device.DeviceID).
		Updates(map[string]any{
			"device_name":   device.DeviceName,
			"device_token":  device.DeviceToken,
			"device_handle": device.DeviceHandle,
		})

	if result.Error != nil {
		return &domainerrors.PersistenceError{Op: "update", Cause: result.Error}
	}

	if result.RowsAffected == 0 {
		return repository.ErrDeviceNotFound
	}

	return nil
}

// Delete removes a device record by its device ID.
func (repo *deviceRepository) Delete(ctx context.Context, deviceID string) error {
	result := repo.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Delete(&model.PushDeviceModel{})

	if result.Error != nil {
		return &domainerrors.PersistenceError{Op: "delete", Cause: result.Error}
	}

	if result.RowsAffected == 0 {
		return repository.ErrDeviceNotFound
	}

	return nil
}

// FindByDeviceID retrieves a device by its unique device ID.
func (repo *deviceRepository) FindByDeviceID(ctx context.Context, deviceID string) (*entity.Device, error) {
	var deviceM model.PushDeviceModel

	if err := repo.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		First(&deviceM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDeviceNotFound
		}

		return nil, errors.Wrap(err, "failed to find device by device ID")
	}

	return toDeviceDomain(&deviceM), nil
}

// FindByUserID retrieves the device registered for a user within a tenant.
func (repo *deviceRepository) FindByUserID(ctx context.Context, userID, tenantDomain string) (*entity.Device, error) {
	var deviceM model.PushDeviceModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND tenant_domain = ?", userID, tenantDomain).
		First(&deviceM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDeviceNotFound
		}

		return nil, errors.Wrap(err, "failed to find device by user ID")
	}

	return toDeviceDomain(&deviceM), nil
}

// GetPublicKey retrieves only the stored public key of a device.
func (repo *deviceRepository) GetPublicKey(ctx context.Context, deviceID string) (string, error) {
	var publicKey string

	if err := repo.db.WithContext(ctx).
		Model(&model.PushDeviceModel{}).
		Select("public_key").
		Where("device_id = ?", deviceID).
		First(&publicKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", repository.ErrDeviceNotFound
		}

		return "", errors.Wrap(err, "failed to get device public key")
	}

	return publicKey, nil
}

// --- Mapper Functions ---

// toDeviceDomain converts a GORM PushDeviceModel to a domain Device entity.
func toDeviceDomain(data *model.PushDeviceModel) *entity.Device {
	if data == nil {
		return nil
	}

	return &entity.Device{
		DeviceID:     data.DeviceID,
		UserID:       data.UserID,
		TenantDomain: data.TenantDomain,
		DeviceName:   data.DeviceName,
		DeviceModel:  data.DeviceModel,
		DeviceToken:  data.DeviceToken,
		DeviceHandle: data.DeviceHandle,
		Provider:     data.Provider,
		ProviderID:   data.ProviderID,
		PublicKey:    data.PublicKey,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromDeviceDomain converts a domain Device entity to a GORM PushDeviceModel.
func fromDeviceDomain(data *entity.Device) *model.PushDeviceModel {
	if data == nil {
		return nil
	}

	return &model.PushDeviceModel{
		DeviceID:     data.DeviceID,
		UserID:       data.UserID,
		TenantDomain: data.TenantDomain,
		DeviceName:   data.DeviceName,
		DeviceModel:  data.DeviceModel,
		DeviceToken:  data.DeviceToken,
		DeviceHandle: data.DeviceHandle,
		Provider:     data.Provider,
		ProviderID:   data.ProviderID,
		PublicKey:    data.PublicKey,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
