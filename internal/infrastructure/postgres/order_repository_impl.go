package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, user_id, full_name, address, city, state, postal_code, country, phone,
	payment_method, status, payment_status, total_amount,
	COALESCE(payment_session_id, ''), COALESCE(checkout_url, ''), COALESCE(idempotency_key, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	o := &entity.Order{}
	a := &o.ShippingAddress
	if err := row.Scan(&o.ID, &o.UserID, &a.FullName, &a.Address, &a.City, &a.State, &a.PostalCode, &a.Country, &a.Phone,
		&o.PaymentMethod, &o.Status, &o.PaymentStatus, &o.TotalAmount,
		&o.PaymentSessionID, &o.CheckoutURL, &o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isBadID(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// PlaceFromCart claims the cart version first, which serializes placement with
// concurrent cart writes. Stock rows are then locked in product id order.
func (r *OrderRepository) PlaceFromCart(ctx context.Context, o *entity.Order, cartVersion int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE carts SET version = version + 1, updated_at = now()
			WHERE user_id = $1 AND version = $2
		`, o.UserID, cartVersion)
		if err != nil {
			return fmt.Errorf("claim cart: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrVersionConflict
		}

		for _, it := range stockLockOrder(o.Items) {
			tag, err := tx.Exec(ctx, `
				UPDATE posts SET stock = stock - $1, updated_at = now()
				WHERE id = $2 AND stock >= $1
			`, it.Quantity, it.ProductID)
			if err != nil {
				return fmt.Errorf("reserve stock: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return &repository.StockError{ProductID: it.ProductID}
			}
		}

		a := o.ShippingAddress
		err = tx.QueryRow(ctx, `
			INSERT INTO orders (user_id, full_name, address, city, state, postal_code, country, phone,
			                    payment_method, status, payment_status, total_amount, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
			RETURNING id, created_at, updated_at
		`, o.UserID, a.FullName, a.Address, a.City, a.State, a.PostalCode, a.Country, a.Phone,
			o.PaymentMethod, o.Status, o.PaymentStatus, o.TotalAmount, o.IdempotencyKey,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return fmt.Errorf("insert order: %w", err)
		}

		batch := &pgx.Batch{}
		for i, it := range o.Items {
			batch.Queue(`INSERT INTO order_items (order_id, product_id, quantity, unit_price, position) VALUES ($1, $2, $3, $4, $5)`,
				o.ID, it.ProductID, it.Quantity, it.UnitPrice, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			DELETE FROM cart_items ci USING carts c
			WHERE ci.cart_id = c.id AND c.user_id = $1
		`, o.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
}

// stockLockOrder returns the items sorted by product id so that concurrent
// placements and restocks acquire post row locks in the same order.
func stockLockOrder(items []entity.OrderItem) []entity.OrderItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b entity.OrderItem) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
	return sorted
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND idempotency_key = $2`, userID, key)
}

func (r *OrderRepository) GetByPaymentSession(ctx context.Context, sessionID string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_session_id = $1`, sessionID)
}

func (r *OrderRepository) getOne(ctx context.Context, sql string, args ...any) (*entity.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	var ptrs []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ptrs = append(ptrs, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}

	out := make([]entity.Order, 0, len(ptrs))
	for _, o := range ptrs {
		out = append(out, *o)
	}
	return out, nil
}

// attachItems loads order lines and joins the live catalog for display data.
// Lines whose product has been deleted keep a nil Product.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*entity.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.pool.Query(ctx, `
		SELECT oi.order_id, oi.product_id, oi.quantity, oi.unit_price,
		       p.id, p.user_id, p.title, p.description, p.price, p.discount_price, p.category,
		       p.stock, p.in_stock, p.image_url, p.image_media_id, p.created_at, p.updated_at
		FROM order_items oi
		LEFT JOIN posts p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.position
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      entity.OrderItem
			p       nullablePost
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.DiscountPrice, &p.Category,
			&p.Stock, &p.InStock, &p.ImageURL, &p.ImageMediaID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		it.Product = p.post()
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *OrderRepository) SetPaymentSession(ctx context.Context, orderID, sessionID, checkoutURL string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET payment_session_id = $1, checkout_url = NULLIF($2, ''), updated_at = now()
		WHERE id = $3
	`, sessionID, checkoutURL, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to entity.OrderStatus, payment entity.PaymentStatus, restock bool) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET status = $1, payment_status = $2, updated_at = now()
			WHERE id = $3 AND status = $4
		`, to, payment, orderID, from)
		if err != nil {
			if isBadID(err) {
				return repository.ErrNotFound
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return repository.ErrNotFound
			}
			return repository.ErrVersionConflict
		}
		if !restock {
			return nil
		}
		// lock in id order like PlaceFromCart; products deleted since placement are skipped
		if _, err := tx.Exec(ctx, `
			SELECT p.id FROM posts p JOIN order_items oi ON oi.product_id = p.id
			WHERE oi.order_id = $1 ORDER BY p.id FOR UPDATE OF p
		`, orderID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE posts p SET stock = p.stock + oi.quantity, updated_at = now()
			FROM order_items oi
			WHERE oi.order_id = $1 AND p.id = oi.product_id
		`, orderID)
		return err
	})
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
