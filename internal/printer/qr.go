package printer

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// qrScale blows each QR module up so thermal heads render a scannable code.
const qrScale = 3

// qrBlock encodes the payload as a QR code and wraps it in a GS v 0 raster
// command.
func qrBlock(payload string) ([]byte, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	bitmap := code.Bitmap()
	size := len(bitmap) * qrScale
	rowBytes := (size + 7) / 8

	// GS v 0: print raster bit image, normal mode.
	out := []byte{
		0x1D, 0x76, 0x30, 0x00,
		byte(rowBytes & 0xFF), byte(rowBytes >> 8),
		byte(size & 0xFF), byte(size >> 8),
	}

	for _, row := range bitmap {
		line := make([]byte, rowBytes)
		for x, dark := range row {
			if !dark {
				continue
			}
			for sx := 0; sx < qrScale; sx++ {
				px := x*qrScale + sx
				line[px/8] |= 0x80 >> uint(px%8)
			}
		}
		for sy := 0; sy < qrScale; sy++ {
			out = append(out, line...)
		}
	}
	return out, nil
}
