package repository

import (
	"context"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

// UserDeleteHook runs synchronously after a user row has been removed.
type UserDeleteHook func(ctx context.Context, deleted *entity.User) error

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUserName(ctx context.Context, userName string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// Delete removes the user and then invokes hook with the deleted record.
	Delete(ctx context.Context, id string, hook UserDeleteHook) (*entity.User, error)
}
