package service

import (
	"pushgate/internal/domain/entity"
)

// QRCodeService renders registration discovery payloads as QR codes for the
// mobile app to scan.
type QRCodeService interface {
	// GenerateDiscoveryQR encodes the discovery data as a PNG QR code.
	GenerateDiscoveryQR(data *entity.RegistrationDiscoveryData) ([]byte, error)
}
