package mailer

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"ticketeira/src/lib"
	awslib "ticketeira/src/lib/aws"
	"ticketeira/src/types"

	"github.com/google/uuid"
)

// SESNotifier sends mail through SES. QR images are uploaded to the assets
// bucket and linked, since SendEmail carries no attachments.
type SESNotifier struct {
	client  awslib.SESAPI
	assets  *awslib.AssetStore
	from    string
	tempDir string
}

func NewSESNotifier(client awslib.SESAPI, assets *awslib.AssetStore, from, tempDir string) *SESNotifier {
	return &SESNotifier{client: client, assets: assets, from: from, tempDir: tempDir}
}

func (s *SESNotifier) Notify(ctx context.Context, n *types.Notification) error {
	images, err := s.uploadQRCodes(ctx, n.QRCodes)
	if err != nil {
		return err
	}
	body, err := Render(n, images)
	if err != nil {
		return err
	}
	id, err := awslib.SESSendMessage(ctx, s.client, s.from, []string{n.To}, n.Subject, body)
	if err != nil {
		return err
	}
	slog.Debug("Sent email", "message_id", id, "template", n.Template)
	return nil
}

func (s *SESNotifier) uploadQRCodes(ctx context.Context, payloads []string) ([]template.URL, error) {
	if s.assets == nil || len(payloads) == 0 {
		return nil, nil
	}
	dir, err := os.MkdirTemp(s.tempDir, "qrcodes-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	var images []template.URL
	for i, payload := range payloads {
		path, err := lib.RenderQRCode(dir, fmt.Sprintf("ingresso-%d", i+1), payload)
		if err != nil {
			return nil, err
		}
		url, err := s.upload(ctx, path)
		if err != nil {
			return nil, err
		}
		images = append(images, template.URL(url))
	}
	return images, nil
}

func (s *SESNotifier) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.assets.Upload(ctx, "qrcodes/"+uuid.NewString()+".jpeg", "image/jpeg", f)
}
