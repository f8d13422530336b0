package lib

import (
	"context"
	"log/slog"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

func GetSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	c, err := mail.NewClient(
		cfg.Host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		slog.Error("Could not initialize smtp client", "error", err.Error())
		return nil, err
	}
	return c, nil
}

// MailSender is satisfied by *mail.Client.
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SendMailInput struct {
	From     string
	FromName string
	To       []string
	ReplyTo  string
	Subject  string
	Body     string
	Html     bool
	// Embeds are file paths attached inline, addressable as cid:<basename>.
	Embeds []string
}

func NewMailMessage(input *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(input.FromName, input.From); err != nil {
		return nil, err
	}
	if err := msg.To(input.To...); err != nil {
		return nil, err
	}
	if input.ReplyTo != "" {
		if err := msg.ReplyTo(input.ReplyTo); err != nil {
			return nil, err
		}
	}
	msg.Subject(input.Subject)
	if input.Html {
		msg.SetBodyString(mail.TypeTextHTML, input.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, input.Body)
	}
	for _, path := range input.Embeds {
		msg.EmbedFile(path)
	}
	return msg, nil
}

func SendMail(ctx context.Context, sender MailSender, input *SendMailInput) error {
	msg, err := NewMailMessage(input)
	if err != nil {
		return err
	}
	return sender.DialAndSendWithContext(ctx, msg)
}
