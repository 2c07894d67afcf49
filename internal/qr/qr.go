package qr

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// Generator renders cancellation QR codes into the media directory. The
// code encodes the mark-as-scanned URL for the spot, so scanning it with
// any phone camera confirms physical departure.
type Generator struct {
	MediaDir string
	BaseURL  string
}

func NewGenerator(mediaDir, baseURL string) *Generator {
	return &Generator{MediaDir: mediaDir, BaseURL: baseURL}
}

// CancellationQR writes cancel_<spot>.png and returns the path relative
// to the server root, suitable for serving under /media/.
func (g *Generator) CancellationQR(spotID int) (string, error) {
	qrDir := filepath.Join(g.MediaDir, "qr")
	if err := os.MkdirAll(qrDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create qr dir: %w", err)
	}

	fileName := fmt.Sprintf("cancel_%d.png", spotID)
	link := fmt.Sprintf("%s/api/mark-as-scanned/%d", g.BaseURL, spotID)

	if err := qrcode.WriteFile(link, qrcode.Medium, 256, filepath.Join(qrDir, fileName)); err != nil {
		return "", fmt.Errorf("failed to render qr for spot %d: %w", spotID, err)
	}
	return filepath.ToSlash(filepath.Join("media", "qr", fileName)), nil
}
