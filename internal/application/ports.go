package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

// MediaObject is a stored file: its public URL and the handle used to delete it.
type MediaObject struct {
	URL string
	ID  string
}

// MediaStore uploads and deletes images.
type MediaStore interface {
	Upload(ctx context.Context, folder string, r io.Reader, filename, contentType string) (MediaObject, error)
	Delete(ctx context.Context, id string) error
}

// CheckoutLine is one product line on a hosted checkout page.
type CheckoutLine struct {
	Name       string
	UnitAmount int64 // minor currency units
	Quantity   int64
}

type CheckoutRequest struct {
	OrderID string
	Email   string
	Lines   []CheckoutLine
}

type CheckoutSession struct {
	ID  string
	URL string
}

type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "completed"
	PaymentEventExpired   PaymentEventType = "expired"
	PaymentEventIgnored   PaymentEventType = "ignored"
)

// PaymentEvent is a verified gateway notification about a checkout session.
type PaymentEvent struct {
	Type      PaymentEventType
	SessionID string
	OrderID   string
}

// PaymentGateway opens hosted checkout sessions and verifies their webhooks.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
	// ExpireCheckoutSession closes an open session so it can no longer be paid.
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
}

// PostIndex is the full-text search index over the catalog.
type PostIndex interface {
	Index(ctx context.Context, p *entity.Post) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Post, error)
}

// JobPublisher enqueues a JSON job; *helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
