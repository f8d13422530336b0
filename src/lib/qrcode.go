package lib

import (
	"fmt"
	"path/filepath"

	"github.com/yeqown/go-qrcode"
)

// RenderQRCode encodes payload as a JPEG image at dir/name.jpeg and returns
// the file path.
func RenderQRCode(dir, name, payload string) (string, error) {
	qrc, err := qrcode.New(payload)
	if err != nil {
		return "", fmt.Errorf("could not encode qrcode: %w", err)
	}
	path := filepath.Join(dir, name+".jpeg")
	if err := qrc.Save(path); err != nil {
		return "", fmt.Errorf("could not save qrcode to file [%s]: %w", path, err)
	}
	return path, nil
}
