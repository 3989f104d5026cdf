package postgres

import (
	"strings"
	"time"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

// prefixed qualifies every column in a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}

// nullablePost receives a LEFT JOINed post row.
type nullablePost struct {
	ID, UserID, Title, Description, Category, ImageURL, ImageMediaID *string
	Price, DiscountPrice                                             *float64
	Stock                                                            *int
	InStock                                                          *bool
	CreatedAt, UpdatedAt                                             *time.Time
}

func (n nullablePost) post() *entity.Post {
	if n.ID == nil {
		return nil
	}
	p := &entity.Post{ID: *n.ID}
	deref(&p.UserID, n.UserID)
	deref(&p.Title, n.Title)
	deref(&p.Description, n.Description)
	deref(&p.Category, n.Category)
	deref(&p.ImageURL, n.ImageURL)
	deref(&p.ImageMediaID, n.ImageMediaID)
	deref(&p.Price, n.Price)
	deref(&p.DiscountPrice, n.DiscountPrice)
	deref(&p.Stock, n.Stock)
	deref(&p.InStock, n.InStock)
	deref(&p.CreatedAt, n.CreatedAt)
	deref(&p.UpdatedAt, n.UpdatedAt)
	return p
}

func deref[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
