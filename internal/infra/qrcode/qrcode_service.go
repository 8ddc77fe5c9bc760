// Package qrcode renders registration discovery payloads as QR codes.
package qrcode

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"pushgate/internal/domain/entity"
	"pushgate/internal/domain/service"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = 256
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateDiscoveryQR encodes the discovery payload as a PNG QR code. The
// payload is transient; it is handed to the scanning device and never stored.
func (s *qrcodeService) GenerateDiscoveryQR(data *entity.RegistrationDiscoveryData) ([]byte, error) {
	if data == nil {
		return nil, errors.New("discovery data must not be nil")
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal discovery data")
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}
