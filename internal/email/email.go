package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them. Used when no Resend API key
// is configured.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, _ string) error {
	s.logger.InfoContext(ctx, "email not sent (no RESEND_API_KEY)", "to", to, "subject", subject)
	return nil
}

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a ResendSender when apiKey is set, LogSender otherwise.
func NewSender(apiKey, from string, logger *slog.Logger) Sender {
	if apiKey == "" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Welcome renders the message sent after a successful signup.
func Welcome(firstName string) (subject, body string) {
	subject = "Welcome to your new account"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>Your account is ready. You can sign in with the email and password you chose.</p>",
		html.EscapeString(firstName),
	)
	return subject, body
}
