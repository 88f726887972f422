package services

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// BillQRSize is the pixel width/height of generated bill QR codes
const BillQRSize = 256

// GenerateBillQR renders a PNG QR code encoding the bill lookup URL, so a
// printed bill can be scanned back to its order.
func GenerateBillQR(billURL string) ([]byte, error) {
	if billURL == "" {
		return nil, fmt.Errorf("bill URL is required")
	}

	code, err := qrcode.New(billURL, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := code.PNG(BillQRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR PNG: %w", err)
	}

	return png, nil
}
