// Package handlers holds the gin HTTP handlers. Each handler depends on the
// narrow set of application methods it calls.
package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/interface/middleware"
)

type CartUseCase interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string, quantity int, removeEntirely bool) (*entity.Cart, error)
	ListCart(ctx context.Context, userID string) (*application.CartView, error)
}

type WishlistUseCase interface {
	Add(ctx context.Context, userID, productID string) (*entity.Wishlist, *entity.Post, error)
	Remove(ctx context.Context, userID, productID string) (*entity.Wishlist, error)
	List(ctx context.Context, userID string) (*entity.Wishlist, error)
}

type OrderUseCase interface {
	Place(ctx context.Context, userID string, in application.PlaceOrderInput) (*application.PlaceOrderResult, error)
	ListOrders(ctx context.Context, userID string) ([]entity.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*entity.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*entity.Order, error)
}

type PaymentWebhookUseCase interface {
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error
}

type PostUseCase interface {
	Create(ctx context.Context, userID string, in application.PostInput, img *application.ImageUpload) (*entity.Post, error)
	Update(ctx context.Context, userID, postID string, in application.PostInput, img *application.ImageUpload) (*entity.Post, error)
	Delete(ctx context.Context, userID, postID string) (*entity.Post, error)
	Get(ctx context.Context, userID, postID string) (*entity.Post, error)
	ListMine(ctx context.Context, userID string) ([]entity.Post, error)
	DeleteAllMine(ctx context.Context, userID string) ([]entity.Post, error)
	Search(ctx context.Context, q string, size int) ([]entity.Post, error)
}

type UserUseCase interface {
	Signup(ctx context.Context, in application.SignupInput) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, application.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (application.TokenPair, string, error)
	Logout(ctx context.Context, userID string)
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	UpdateProfile(ctx context.Context, userID string, in application.UpdateProfileInput) (*entity.User, error)
	UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error)
	DeleteAccount(ctx context.Context, userID string) (*entity.User, error)
}

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

func tokenMeta(p application.TokenPair) map[string]any {
	return map[string]any{
		"access_expires_at":  p.AccessTokenExpiry.Format(time.RFC3339),
		"refresh_expires_at": p.RefreshTokenExpiry.Format(time.RFC3339),
	}
}
