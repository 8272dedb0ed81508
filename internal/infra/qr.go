package infra

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// GenerateQRPNG encodes content as a PNG QR code of size×size pixels.
func GenerateQRPNG(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return png, nil
}
