// Package entity contains the core business objects of the project.
package entity

import (
	"time"
)

// Device represents a trusted binding between a user and a physical device
// registered for push based step-up authentication.
type Device struct {
	DeviceID     string    `json:"deviceId"`               // Opaque, unguessable device identifier.
	UserID       string    `json:"userId"`                 // The ID of the user who owns this device.
	TenantDomain string    `json:"tenantDomain"`           // Tenant the device is registered under.
	DeviceName   string    `json:"deviceName"`             // Human readable device name.
	DeviceModel  string    `json:"deviceModel"`            // Device hardware model.
	DeviceToken  string    `json:"deviceToken"`            // Opaque delivery address used by the push provider.
	DeviceHandle string    `json:"deviceHandle,omitempty"` // Provider specific secondary identifier, optional.
	Provider     string    `json:"provider"`               // Name of the push provider the device is bound to.
	ProviderID   string    `json:"providerId"`             // Identifier of the configured provider instance.
	PublicKey    string    `json:"-"`                      // Trusted public key, set only at successful registration.
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PushDevice returns the provider-facing projection of the device.
func (d *Device) PushDevice() PushDeviceData {
	return PushDeviceData{
		DeviceToken:  d.DeviceToken,
		DeviceHandle: d.DeviceHandle,
		Provider:     d.Provider,
	}
}
