package templates

import (
	"time"

	"github.com/oksasatya/go-ecommerce-backend/config"
)

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithOrder(id, status, paymentMethod, total, currency, shipTo string, items []OrderLine) Option {
	return func(d *EmailData) {
		d.OrderID = id
		d.Status = status
		d.PaymentMethod = paymentMethod
		d.Total = total
		d.Currency = currency
		d.ShipTo = shipTo
		d.Items = items
	}
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:    cfg.LogoURL,
		SupportURL: cfg.SupportURL,
		OrdersURL:  cfg.OrdersURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email, opts...))
}

func NewOrderConfirmationData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, OrderConfirmation, name, email, opts...))
}

func NewOrderCancelledData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, OrderCancelled, name, email, opts...))
}
