package mailer

import (
	"context"
	"log/slog"
	"ticketeira/src/types"
)

// LogNotifier records notifications instead of delivering them. It is the
// default for local development.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{log: logger.With("component", "notifier")}
}

func (l *LogNotifier) Notify(ctx context.Context, n *types.Notification) error {
	l.log.Info("notification",
		"to", n.To,
		"template", n.Template,
		"subject", n.Subject,
		"qr_codes", len(n.QRCodes),
	)
	return nil
}
