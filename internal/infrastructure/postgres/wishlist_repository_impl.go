package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

type WishlistRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) GetByUser(ctx context.Context, userID string, withProducts bool) (*entity.Wishlist, error) {
	return loadWishlist(ctx, r.pool, userID, withProducts)
}

func loadWishlist(ctx context.Context, q querier, userID string, withProducts bool) (*entity.Wishlist, error) {
	w := &entity.Wishlist{UserID: userID}
	err := q.QueryRow(ctx, `SELECT id FROM wishlists WHERE user_id = $1`, userID).Scan(&w.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT wi.product_id, `+prefixed("p", postColumns)+`
		FROM wishlist_items wi
		JOIN posts p ON p.id = wi.product_id
		WHERE wi.wishlist_id = $1
		ORDER BY wi.added_at
	`, w.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		p := entity.Post{}
		if err := rows.Scan(&pid, &p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.DiscountPrice, &p.Category,
			&p.Stock, &p.InStock, &p.ImageURL, &p.ImageMediaID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		w.ProductIDs = append(w.ProductIDs, pid)
		if withProducts {
			w.Products = append(w.Products, p)
		}
	}
	return w, rows.Err()
}

func (r *WishlistRepository) AddItem(ctx context.Context, userID, productID string) (*entity.Wishlist, error) {
	var out *entity.Wishlist
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var wishlistID string
		err := tx.QueryRow(ctx, `
			INSERT INTO wishlists (user_id) VALUES ($1)
			ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			RETURNING id
		`, userID).Scan(&wishlistID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO wishlist_items (wishlist_id, product_id) VALUES ($1, $2)`, wishlistID, productID)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			if pgCode(err) == codeForeignKeyViolation || isBadID(err) {
				return repository.ErrNotFound
			}
			return err
		}

		out, err = loadWishlist(ctx, tx, userID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *WishlistRepository) RemoveItem(ctx context.Context, userID, productID string) (*entity.Wishlist, error) {
	var out *entity.Wishlist
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM wishlist_items wi
			USING wishlists w
			WHERE wi.wishlist_id = w.id AND w.user_id = $1 AND wi.product_id = $2
		`, userID, productID)
		if err != nil {
			if isBadID(err) {
				return repository.ErrNotFound
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		out, err = loadWishlist(ctx, tx, userID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *WishlistRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlists WHERE user_id = $1`, userID)
	return err
}

var _ repository.WishlistRepository = (*WishlistRepository)(nil)
