package payments

import (
	"context"
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/kferacho3/BodegaDanes/internal/domain"
)

const placeholderImage = "/images/placeholder-service.webp"

// Gateway wraps the Stripe API for the pieces this service uses: the
// product/price catalog, checkout sessions, and balance invoices.
type Gateway struct {
	api *client.API
}

func NewGateway(secretKey string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api}
}

// ListServices returns every active one-time price collapsed into a
// ServiceTier. The price is the deposit; the full amount comes from the
// product's "full" metadata and is clamped up to the deposit so the
// deposit<=full invariant always holds.
func (g *Gateway) ListServices(ctx context.Context) ([]domain.ServiceTier, error) {
	params := &stripe.PriceListParams{Active: stripe.Bool(true)}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	params.AddExpand("data.product")

	var tiers []domain.ServiceTier
	iter := g.api.Prices.List(params)
	for iter.Next() {
		p := iter.Price()
		if p.Type != stripe.PriceTypeOneTime || p.UnitAmount == 0 || p.Product == nil {
			continue
		}
		tiers = append(tiers, tierFromPrice(p))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	return tiers, nil
}

// GetService fetches a single price (with its product) by price ID.
func (g *Gateway) GetService(ctx context.Context, priceID string) (domain.ServiceTier, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	params.AddExpand("product")

	p, err := g.api.Prices.Get(priceID, params)
	if err != nil {
		return domain.ServiceTier{}, fmt.Errorf("get price %s: %w", priceID, err)
	}
	if p.UnitAmount == 0 {
		return domain.ServiceTier{}, domain.ErrServiceNotFound
	}
	return tierFromPrice(p), nil
}

// CheckoutSessionInput describes the session created before redirecting
// the browser to the payment page. Metadata is echoed back verbatim on
// every later webhook event for the session.
type CheckoutSessionInput struct {
	PriceID       string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CreateCheckoutSession creates a card payment session and returns its ID.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.ID, nil
}

const invoiceDueDays = 7

// CreateRemainingInvoice bills the customer for amount (cents) via a
// send-invoice collection with a 7-day due window.
func (g *Gateway) CreateRemainingInvoice(ctx context.Context, customerID, serviceID string, amount int64) error {
	itemParams := &stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String("Remaining balance - " + serviceID),
	}
	itemParams.Context = ctx
	if _, err := g.api.InvoiceItems.New(itemParams); err != nil {
		return fmt.Errorf("create invoice item: %w", err)
	}

	invParams := &stripe.InvoiceParams{
		Customer:         stripe.String(customerID),
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:     stripe.Int64(invoiceDueDays),
	}
	invParams.Context = ctx
	if _, err := g.api.Invoices.New(invParams); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func tierFromPrice(p *stripe.Price) domain.ServiceTier {
	prod := p.Product
	tier := domain.ServiceTier{
		ID:            p.ID,
		Name:          prod.Name,
		DepositAmount: p.UnitAmount,
		FullAmount:    p.UnitAmount,
		Image:         placeholderImage,
		Blurb:         prod.Description,
		Slots:         1,
	}
	if len(prod.Images) > 0 {
		tier.Image = prod.Images[0]
	}
	if blurb, ok := prod.Metadata["blurb"]; ok && blurb != "" {
		tier.Blurb = blurb
	}
	if full, err := strconv.ParseInt(prod.Metadata["full"], 10, 64); err == nil && full > tier.DepositAmount {
		tier.FullAmount = full
	}
	if slots, err := strconv.Atoi(prod.Metadata["slots"]); err == nil && slots > 0 {
		tier.Slots = slots
	}
	return tier
}
