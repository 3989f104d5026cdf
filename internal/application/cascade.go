package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

// CascadeService removes everything a deleted user owned except their orders.
type CascadeService struct {
	Posts     repo.PostRepository
	Carts     repo.CartRepository
	Wishlists repo.WishlistRepository
	Media     MediaStore
	Index     PostIndex
	Logger    *logrus.Logger
}

func NewCascadeService(posts repo.PostRepository, carts repo.CartRepository, wishlists repo.WishlistRepository, media MediaStore, index PostIndex, logger *logrus.Logger) *CascadeService {
	return &CascadeService{Posts: posts, Carts: carts, Wishlists: wishlists, Media: media, Index: index, Logger: logger}
}

// AfterUserDeleted is a repository.UserDeleteHook.
func (c *CascadeService) AfterUserDeleted(ctx context.Context, u *entity.User) error {
	var errs []error

	posts, err := c.Posts.DeleteByUser(ctx, u.ID)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete posts: %w", err))
	}
	for _, p := range posts {
		c.dropMedia(ctx, p.ImageMediaID)
		if c.Index != nil {
			if err := c.Index.Remove(ctx, p.ID); err != nil {
				c.warn(err, "post_id", p.ID, "es delete failed")
			}
		}
	}
	c.dropMedia(ctx, u.AvatarMediaID)

	if err := c.Wishlists.DeleteByUser(ctx, u.ID); err != nil {
		errs = append(errs, fmt.Errorf("delete wishlist: %w", err))
	}
	if err := c.Carts.DeleteByUser(ctx, u.ID); err != nil {
		errs = append(errs, fmt.Errorf("delete cart: %w", err))
	}

	if c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{"user_id": u.ID, "posts": len(posts)}).Info("user data removed")
	}
	return errors.Join(errs...)
}

func (c *CascadeService) dropMedia(ctx context.Context, id string) {
	if id == "" || c.Media == nil {
		return
	}
	if err := c.Media.Delete(ctx, id); err != nil {
		c.warn(err, "media_id", id, "media delete failed")
	}
}

func (c *CascadeService) warn(err error, key, val, msg string) {
	if c.Logger != nil {
		c.Logger.WithError(err).WithField(key, val).Warn(msg)
	}
}
