package service

import (
	"context"
)

// Device lifecycle event types.
const (
	EventDeviceRegistered   = "DEVICE_REGISTERED"
	EventDeviceUnregistered = "DEVICE_UNREGISTERED"
	EventDeviceEdited       = "DEVICE_EDITED"
)

// DeviceEvent represents a device lifecycle event emitted for auditing.
type DeviceEvent struct {
	EventType    string `json:"event_type"`
	DeviceID     string `json:"device_id"`
	UserID       string `json:"user_id,omitempty"`
	TenantDomain string `json:"tenant_domain"`
	Provider     string `json:"provider,omitempty"`
	Initiator    string `json:"initiator,omitempty"` // "user" or "mobile"
}

// EventPublisher defines the interface for publishing device lifecycle
// events to the external audit pipeline. Publishing is best effort; the
// orchestrator logs failures and never fails the originating operation.
type EventPublisher interface {
	PublishDeviceEvent(ctx context.Context, event *DeviceEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
