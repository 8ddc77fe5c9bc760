// Package model holds the GORM-specific structs backing the domain entities.
package model

import (
	"time"
)

// PushDeviceModel is the GORM-specific struct for the 'push_devices' table.
// One registered device per user and tenant is enforced by the unique index.
type PushDeviceModel struct {
	DeviceID     string `gorm:"type:varchar(64);primary_key"`
	UserID       string `gorm:"type:varchar(255);not null;uniqueIndex:idx_push_devices_user_tenant"`
	TenantDomain string `gorm:"type:varchar(255);not null;uniqueIndex:idx_push_devices_user_tenant"`
	DeviceName   string `gorm:"type:varchar(255);not null"`
	DeviceModel  string `gorm:"type:varchar(255)"`
	DeviceToken  string `gorm:"type:text;not null"`
	DeviceHandle string `gorm:"type:text"`
	Provider     string `gorm:"type:varchar(50);not null"`
	ProviderID   string `gorm:"type:varchar(255);not null"`
	PublicKey    string `gorm:"type:text;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (PushDeviceModel) TableName() string {
	return "push_devices"
}
