package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Mailer sends one transactional email. Implementations must be safe for
// concurrent use; the webhook handler fires several sends per event.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendMailer sends through the Resend API with a fixed from-address.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
