package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) GetByUser(ctx context.Context, userID string, withProducts bool) (*entity.Cart, error) {
	c := &entity.Cart{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, version, created_at, updated_at FROM carts WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	items, err := loadCartItems(ctx, r.pool, c.ID, withProducts)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

func loadCartItems(ctx context.Context, q querier, cartID string, withProducts bool) ([]entity.CartItem, error) {
	if !withProducts {
		rows, err := q.Query(ctx, `SELECT product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY position`, cartID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var items []entity.CartItem
		for rows.Next() {
			var it entity.CartItem
			if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		return items, rows.Err()
	}

	rows, err := q.Query(ctx, `
		SELECT ci.quantity, p.id, p.user_id, p.title, p.description, p.price, p.discount_price, p.category,
		       p.stock, p.in_stock, p.image_url, p.image_media_id, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN posts p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []entity.CartItem
	for rows.Next() {
		p := &entity.Post{}
		var qty int
		if err := rows.Scan(&qty, &p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.DiscountPrice, &p.Category,
			&p.Stock, &p.InStock, &p.ImageURL, &p.ImageMediaID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, entity.CartItem{ProductID: p.ID, Quantity: qty, Product: p})
	}
	return items, rows.Err()
}

func (r *CartRepository) Save(ctx context.Context, c *entity.Cart) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if c.ID == "" {
			err := tx.QueryRow(ctx, `
				INSERT INTO carts (user_id) VALUES ($1)
				RETURNING id, version, created_at, updated_at
			`, c.UserID).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
			if err != nil {
				// a concurrent request created the cart first
				if isUniqueViolation(err) {
					return repository.ErrVersionConflict
				}
				return err
			}
		} else {
			tag, err := tx.Exec(ctx, `
				UPDATE carts SET version = version + 1, updated_at = now()
				WHERE id = $1 AND version = $2
			`, c.ID, c.Version)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return repository.ErrVersionConflict
			}
			c.Version++
		}
		return replaceCartItems(ctx, tx, c.ID, c.Items)
	})
}

func replaceCartItems(ctx context.Context, tx pgx.Tx, cartID string, items []entity.CartItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`INSERT INTO cart_items (cart_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)`,
			cartID, it.ProductID, it.Quantity, i)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (r *CartRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}

var _ repository.CartRepository = (*CartRepository)(nil)
