package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"ticketeira/src/config"
	"ticketeira/src/lib"
	awslib "ticketeira/src/lib/aws"
	"ticketeira/src/types"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Notifier delivers a transactional message built from a template.
type Notifier interface {
	Notify(ctx context.Context, n *types.Notification) error
}

type templateData struct {
	ToName   string
	Fields   map[string]any
	QRImages []template.URL
}

// Render executes the notification's template. qrImages are image sources,
// either cid: references to inline attachments or https links.
func Render(n *types.Notification, qrImages []template.URL) (string, error) {
	name := string(n.Template) + ".html"
	if templates.Lookup(name) == nil {
		return "", fmt.Errorf("unknown email template %q", n.Template)
	}
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, templateData{ToName: n.ToName, Fields: n.Fields, QRImages: qrImages}); err != nil {
		return "", err
	}
	return body.String(), nil
}

// New selects the notifier driver named by cfg.Notifier.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Notifier, error) {
	switch cfg.Notifier {
	case "", "log":
		return NewLogNotifier(logger), nil
	case "smtp":
		c, err := lib.GetSMTPClient(lib.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
		if err != nil {
			return nil, err
		}
		return NewSMTPNotifier(c, cfg.MailFrom, cfg.MailFromName, cfg.TempDir), nil
	case "ses":
		client, err := awslib.GetSESClient(ctx)
		if err != nil {
			return nil, err
		}
		var assets *awslib.AssetStore
		if cfg.AssetsBucket != "" {
			s3Client, err := awslib.GetS3Client(ctx)
			if err != nil {
				return nil, err
			}
			assets = awslib.NewAssetStore(s3Client, cfg.AssetsBucket, 7*24*time.Hour)
		}
		return NewSESNotifier(client, assets, cfg.MailFrom, cfg.TempDir), nil
	case "sqs":
		client, err := awslib.GetSQSClient(ctx)
		if err != nil {
			return nil, err
		}
		return NewQueueNotifier(awslib.NewQueueProducer(client, cfg.EmailQueue), cfg.MailFrom, cfg.MailFromName), nil
	}
	return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
}
