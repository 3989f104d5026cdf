package repository

import (
	"context"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

type WishlistRepository interface {
	GetByUser(ctx context.Context, userID string, withProducts bool) (*entity.Wishlist, error)
	// AddItem creates the wishlist on first use; ErrDuplicate if already present.
	AddItem(ctx context.Context, userID, productID string) (*entity.Wishlist, error)
	// RemoveItem returns ErrNotFound if the wishlist or the item is missing.
	RemoveItem(ctx context.Context, userID, productID string) (*entity.Wishlist, error)
	DeleteByUser(ctx context.Context, userID string) error
}
