package repository

import (
	"context"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

// CartRepository stores one cart per user.
type CartRepository interface {
	// GetByUser loads the cart with its lines; withProducts resolves live product data.
	GetByUser(ctx context.Context, userID string, withProducts bool) (*entity.Cart, error)
	// Save inserts a new cart (ID empty) or replaces the lines of an existing one
	// when its stored version still equals c.Version. On success c.Version is bumped.
	Save(ctx context.Context, c *entity.Cart) error
	DeleteByUser(ctx context.Context, userID string) error
}
