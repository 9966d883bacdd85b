package app

import (
	"context"

	"github.com/kferacho3/BodegaDanes/internal/domain"
	"github.com/kferacho3/BodegaDanes/internal/payments"
)

type CheckoutGateway interface {
	GetService(ctx context.Context, priceID string) (domain.ServiceTier, error)
	CreateCheckoutSession(ctx context.Context, in payments.CheckoutSessionInput) (string, error)
}

// CheckoutService creates the payment session the wizard redirects to.
// Everything the reconciliation handler will later need rides along as
// session metadata.
type CheckoutService struct {
	gateway CheckoutGateway
	baseURL string
}

func NewCheckoutService(gateway CheckoutGateway, baseURL string) *CheckoutService {
	return &CheckoutService{gateway: gateway, baseURL: baseURL}
}

type CreateSessionInput struct {
	Date             string
	ServiceID        string
	ConfirmationCode string
	Email            string
	Theme            string
	Time             string
	Location         string
	Guests           string
	Notes            string
}

// CreateSession validates the submission, confirms the price still exists,
// and returns the new session's ID for the client-side redirect.
func (s *CheckoutService) CreateSession(ctx context.Context, in CreateSessionInput) (string, error) {
	if _, err := parseDay(in.Date); err != nil {
		return "", err
	}
	if in.ServiceID == "" {
		return "", domain.ErrServiceIDRequired
	}
	if _, err := s.gateway.GetService(ctx, in.ServiceID); err != nil {
		return "", err
	}

	return s.gateway.CreateCheckoutSession(ctx, payments.CheckoutSessionInput{
		PriceID:       in.ServiceID,
		CustomerEmail: in.Email,
		SuccessURL:    s.baseURL + "/book/confirmation?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.baseURL + "/book?canceled=1",
		Metadata: map[string]string{
			"date":             in.Date,
			"serviceId":        in.ServiceID,
			"confirmationCode": in.ConfirmationCode,
			"theme":            in.Theme,
			"time":             in.Time,
			"location":         in.Location,
			"guests":           in.Guests,
			"notes":            in.Notes,
		},
	})
}
