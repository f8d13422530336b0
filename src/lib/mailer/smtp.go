package mailer

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"ticketeira/src/lib"
	"ticketeira/src/types"
)

// SMTPNotifier sends mail directly, with QR codes as inline JPEG attachments.
type SMTPNotifier struct {
	sender   lib.MailSender
	from     string
	fromName string
	tempDir  string
}

func NewSMTPNotifier(sender lib.MailSender, from, fromName, tempDir string) *SMTPNotifier {
	return &SMTPNotifier{sender: sender, from: from, fromName: fromName, tempDir: tempDir}
}

func (s *SMTPNotifier) Notify(ctx context.Context, n *types.Notification) error {
	dir, err := os.MkdirTemp(s.tempDir, "qrcodes-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	var embeds []string
	var images []template.URL
	for i, payload := range n.QRCodes {
		path, err := lib.RenderQRCode(dir, fmt.Sprintf("ingresso-%d", i+1), payload)
		if err != nil {
			return err
		}
		embeds = append(embeds, path)
		images = append(images, template.URL("cid:"+filepath.Base(path)))
	}
	body, err := Render(n, images)
	if err != nil {
		return err
	}
	return lib.SendMail(ctx, s.sender, &lib.SendMailInput{
		From:     s.from,
		FromName: s.fromName,
		To:       []string{n.To},
		Subject:  n.Subject,
		Body:     body,
		Html:     true,
		Embeds:   embeds,
	})
}
