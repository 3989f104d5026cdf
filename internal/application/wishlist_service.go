package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
)

type WishlistService struct {
	Wishlists repo.WishlistRepository
	Posts     repo.PostRepository
	Logger    *logrus.Logger
}

func NewWishlistService(wishlists repo.WishlistRepository, posts repo.PostRepository, logger *logrus.Logger) *WishlistService {
	return &WishlistService{Wishlists: wishlists, Posts: posts, Logger: logger}
}

// Add appends a post to the user's wishlist and returns the wishlist and the added post.
func (s *WishlistService) Add(ctx context.Context, userID, postID string) (*entity.Wishlist, *entity.Post, error) {
	if !validID(postID) {
		return nil, nil, apperror.Validation("Invalid post ID", nil)
	}
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, apperror.NotFound("Post not found")
		}
		return nil, nil, apperror.Internal("load post", err)
	}

	w, err := s.Wishlists.AddItem(ctx, userID, postID)
	switch {
	case err == nil:
		return w, post, nil
	case errors.Is(err, repo.ErrDuplicate):
		return nil, nil, apperror.Conflict("Post already in wishlist")
	case errors.Is(err, repo.ErrNotFound):
		return nil, nil, apperror.NotFound("Post not found")
	default:
		return nil, nil, apperror.Internal("add wishlist item", err)
	}
}

func (s *WishlistService) Remove(ctx context.Context, userID, postID string) (*entity.Wishlist, error) {
	if !validID(postID) {
		return nil, apperror.Validation("Invalid post ID", nil)
	}
	w, err := s.Wishlists.RemoveItem(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Post was not in wishlist")
		}
		return nil, apperror.Internal("remove wishlist item", err)
	}
	return w, nil
}

func (s *WishlistService) List(ctx context.Context, userID string) (*entity.Wishlist, error) {
	w, err := s.Wishlists.GetByUser(ctx, userID, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Wishlist not found")
		}
		return nil, apperror.Internal("load wishlist", err)
	}
	return w, nil
}
