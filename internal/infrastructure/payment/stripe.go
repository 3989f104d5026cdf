// Package payment adapts Stripe Checkout to application.PaymentGateway.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/application"
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventCheckoutExpired   = "checkout.session.expired"
)

type Stripe struct {
	sessions      *session.Client
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
}

// NewStripe returns nil when no secret key is configured, which disables ONLINE orders.
func NewStripe(cfg *config.Config) *Stripe {
	if cfg.StripeSecretKey == "" {
		return nil
	}
	return newStripe(cfg, stripe.GetBackend(stripe.APIBackend))
}

func newStripe(cfg *config.Config, backend stripe.Backend) *Stripe {
	currency := cfg.PaymentCurrency
	if currency == "" {
		currency = "usd"
	}
	return &Stripe{
		sessions:      &session.Client{B: backend, Key: cfg.StripeSecretKey},
		webhookSecret: cfg.StripeWebhookSecret,
		currency:      currency,
		successURL:    cfg.PaymentSuccessURL,
		cancelURL:     cfg.PaymentCancelURL,
	}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req application.CheckoutRequest) (*application.CheckoutSession, error) {
	if len(req.Lines) == 0 {
		return nil, errors.New("checkout without lines")
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	params.Context = ctx
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata("order_id", req.OrderID)
	for _, l := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(l.Name)},
				UnitAmount:  stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	cs, err := s.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &application.CheckoutSession{ID: cs.ID, URL: cs.URL}, nil
}

// ExpireCheckoutSession fails when the session is no longer open, for example
// because the customer already paid.
func (s *Stripe) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := s.sessions.Expire(sessionID, params); err != nil {
		return fmt.Errorf("stripe expire session: %w", err)
	}
	return nil
}

// ParseWebhook verifies the Stripe-Signature header and maps checkout events.
// Other event types come back as PaymentEventIgnored.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*application.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	var typ application.PaymentEventType
	switch string(event.Type) {
	case eventCheckoutCompleted:
		typ = application.PaymentEventCompleted
	case eventCheckoutExpired:
		typ = application.PaymentEventExpired
	default:
		return &application.PaymentEvent{Type: application.PaymentEventIgnored}, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &application.PaymentEvent{Type: typ, SessionID: cs.ID, OrderID: cs.ClientReferenceID}, nil
}
