package repository

import (
	"context"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

type OrderRepository interface {
	// PlaceFromCart atomically decrements stock for every item, inserts the
	// order and empties the user's cart. A *StockError aborts everything, as
	// does ErrVersionConflict when the cart no longer has cartVersion.
	PlaceFromCart(ctx context.Context, o *entity.Order, cartVersion int64) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*entity.Order, error)
	GetByPaymentSession(ctx context.Context, sessionID string) (*entity.Order, error)
	// ListByUser resolves item display data against the live catalog.
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
	SetPaymentSession(ctx context.Context, orderID, sessionID, checkoutURL string) error
	// UpdateStatus moves an order from one status to another; ErrVersionConflict
	// if the stored status no longer equals from. restock returns item
	// quantities to the catalog in the same transaction.
	UpdateStatus(ctx context.Context, orderID string, from, to entity.OrderStatus, payment entity.PaymentStatus, restock bool) error
}
