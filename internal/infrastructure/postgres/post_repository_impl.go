package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, user_id, title, description, price, discount_price, category, stock, in_stock,
	image_url, image_media_id, created_at, updated_at`

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Price, &p.DiscountPrice, &p.Category,
		&p.Stock, &p.InStock, &p.ImageURL, &p.ImageMediaID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isBadID(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func collectPosts(rows pgx.Rows) ([]entity.Post, error) {
	defer rows.Close()
	var out []entity.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, title, description, price, discount_price, category, stock, in_stock, image_url, image_media_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Title, p.Description, p.Price, p.DiscountPrice, p.Category, p.Stock, p.InStock, p.ImageURL, p.ImageMediaID)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (r *PostRepository) GetOwned(ctx context.Context, id, userID string) (*entity.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $1, description = $2, price = $3, discount_price = $4, category = $5, stock = $6,
		    in_stock = $7, image_url = $8, image_media_id = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12
	`, p.Title, p.Description, p.Price, p.DiscountPrice, p.Category, p.Stock,
		p.InStock, p.ImageURL, p.ImageMediaID, p.UpdatedAt, p.ID, p.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		if isBadID(err) {
			return repository.ErrNotFound
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) DeleteByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM posts WHERE user_id = $1 RETURNING `+postColumns, userID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

var _ repository.PostRepository = (*PostRepository)(nil)
