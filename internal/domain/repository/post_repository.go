package repository

import (
	"context"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

// PostRepository is the catalog store.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	// GetOwned returns ErrNotFound when the post does not exist or belongs to someone else.
	GetOwned(ctx context.Context, id, userID string) (*entity.Post, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) ([]entity.Post, error)
}
