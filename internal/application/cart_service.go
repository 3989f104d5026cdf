package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
)

// maxCartAttempts bounds the read-check-write loop on version conflicts.
const maxCartAttempts = 3

type CartService struct {
	Carts  repo.CartRepository
	Posts  repo.PostRepository
	Logger *logrus.Logger
}

func NewCartService(carts repo.CartRepository, posts repo.PostRepository, logger *logrus.Logger) *CartService {
	return &CartService{Carts: carts, Posts: posts, Logger: logger}
}

// CartLine is a cart item joined with its live product.
type CartLine struct {
	Product    *entity.Post
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}

type CartView struct {
	Cart        *entity.Cart
	Lines       []CartLine
	TotalAmount float64
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// AddItem adds quantity of a product, merging into an existing line.
// Quantities below 1 are treated as 1.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error) {
	if !validID(productID) {
		return nil, apperror.Validation("Invalid product ID", nil)
	}
	if quantity < 1 {
		quantity = 1
	}

	for attempt := 1; attempt <= maxCartAttempts; attempt++ {
		product, err := s.Posts.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apperror.NotFound("Product not found")
			}
			return nil, apperror.Internal("load product", err)
		}
		if quantity > product.Stock {
			return nil, apperror.InsufficientStock(fmt.Sprintf("Only %d items available in stock", product.Stock))
		}

		cart, err := s.loadOrNew(ctx, userID)
		if err != nil {
			return nil, err
		}

		if i := cart.Find(productID); i >= 0 {
			existing := cart.Items[i].Quantity
			if existing+quantity > product.Stock {
				left := product.Stock - existing
				if left < 0 {
					left = 0
				}
				return nil, apperror.InsufficientStock(fmt.Sprintf("Cannot add %d more. Only %d left.", quantity, left))
			}
			cart.Items[i].Quantity += quantity
		} else {
			cart.Items = append(cart.Items, entity.CartItem{ProductID: productID, Quantity: quantity})
		}

		err = s.Carts.Save(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return nil, apperror.Internal("save cart", err)
		}
		s.logRetry(userID, attempt)
	}
	return nil, apperror.Conflict("Cart was modified concurrently, please retry")
}

// RemoveItem decrements a line by quantity (minimum 1) or drops it entirely.
// A line that would reach zero is removed.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string, quantity int, removeEntirely bool) (*entity.Cart, error) {
	if !validID(productID) {
		return nil, apperror.Validation("Invalid product ID", nil)
	}
	if quantity < 1 {
		quantity = 1
	}

	for attempt := 1; attempt <= maxCartAttempts; attempt++ {
		cart, err := s.Carts.GetByUser(ctx, userID, false)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apperror.NotFound("Cart not found")
			}
			return nil, apperror.Internal("load cart", err)
		}

		i := cart.Find(productID)
		if i < 0 {
			return nil, apperror.NotFound("Product was not in cart")
		}
		if removeEntirely || cart.Items[i].Quantity <= quantity {
			cart.Remove(productID)
		} else {
			cart.Items[i].Quantity -= quantity
		}

		err = s.Carts.Save(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return nil, apperror.Internal("save cart", err)
		}
		s.logRetry(userID, attempt)
	}
	return nil, apperror.Conflict("Cart was modified concurrently, please retry")
}

// ListCart returns the cart priced against the live catalog. It never touches stock.
func (s *CartService) ListCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.Carts.GetByUser(ctx, userID, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Cart not found")
		}
		return nil, apperror.Internal("load cart", err)
	}

	view := &CartView{Cart: cart, Lines: make([]CartLine, 0, len(cart.Items))}
	total := decimal.Zero
	for _, it := range cart.Items {
		if it.Product == nil {
			continue
		}
		unit := it.Product.EffectivePrice()
		line := entity.LineTotal(unit, it.Quantity)
		total = total.Add(decimal.NewFromFloat(line))
		view.Lines = append(view.Lines, CartLine{Product: it.Product, Quantity: it.Quantity, UnitPrice: unit, TotalPrice: line})
	}
	view.TotalAmount = total.Round(2).InexactFloat64()
	return view, nil
}

func (s *CartService) loadOrNew(ctx context.Context, userID string) (*entity.Cart, error) {
	cart, err := s.Carts.GetByUser(ctx, userID, false)
	if err == nil {
		return cart, nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return &entity.Cart{UserID: userID}, nil
	}
	return nil, apperror.Internal("load cart", err)
}

func (s *CartService) logRetry(userID string, attempt int) {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "attempt": attempt}).Debug("cart version conflict, retrying")
	}
}
