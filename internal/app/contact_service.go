package app

import (
	"context"
	"errors"

	"github.com/kferacho3/BodegaDanes/internal/email"
)

// ErrContactFieldsRequired rejects a partial contact-form submission.
var ErrContactFieldsRequired = errors.New("name, email and message are required")

// ContactService relays a contact-form submission: one notification to the
// operator, one auto-reply to the sender. Unlike the webhook path these
// sends are the whole point of the request, so a failure propagates.
type ContactService struct {
	mailer   email.Mailer
	operator string
}

func NewContactService(mailer email.Mailer, operator string) *ContactService {
	return &ContactService{mailer: mailer, operator: operator}
}

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

func (s *ContactService) Relay(ctx context.Context, in ContactInput) error {
	if in.Name == "" || in.Email == "" || in.Message == "" {
		return ErrContactFieldsRequired
	}
	if err := s.mailer.Send(ctx, s.operator, "New inquiry from "+in.Name,
		email.ContactNotificationHTML(in.Name, in.Email, in.Message)); err != nil {
		return err
	}
	return s.mailer.Send(ctx, in.Email, "Thanks for contacting Bodega Danes",
		email.ContactAutoReplyHTML(in.Name))
}
