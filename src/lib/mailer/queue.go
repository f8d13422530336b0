package mailer

import (
	"context"
	"encoding/json"
	"ticketeira/src/types"
)

type QueueProducer interface {
	Send(ctx context.Context, body string) (string, error)
}

// QueueNotifier hands rendered messages to the email queue worker.
type QueueNotifier struct {
	producer QueueProducer
	from     string
	fromName string
}

func NewQueueNotifier(producer QueueProducer, from, fromName string) *QueueNotifier {
	return &QueueNotifier{producer: producer, from: from, fromName: fromName}
}

func (q *QueueNotifier) Notify(ctx context.Context, n *types.Notification) error {
	body, err := Render(n, nil)
	if err != nil {
		return err
	}
	emailBody := &types.JSONB{
		"from":      q.from,
		"from-name": q.fromName,
		"to":        []string{n.To},
		"subject":   n.Subject,
		"body":      body,
		"html":      true,
		"template":  n.Template,
		"qr-codes":  n.QRCodes,
	}
	b, err := json.Marshal(emailBody)
	if err != nil {
		return err
	}
	_, err = q.producer.Send(ctx, string(b))
	return err
}
