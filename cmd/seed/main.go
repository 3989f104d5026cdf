package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ecommerce-backend/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

type product struct {
	title, category string
	price, discount float64 // discount in percent
	stock           int
}

var catalog = []product{
	{"Ceramic Mug", "kitchen", 12.5, 0, 40},
	{"Desk Lamp", "home", 39.99, 15, 12},
	{"Canvas Tote", "accessories", 18, 10, 25},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)

	email := "demo@shop.local"
	password := "password123"

	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hash, hErr := helpers.HashPassword(password)
		if hErr != nil {
			log.Fatalf("failed to hash password: %v", hErr)
		}
		u = &entity.User{Email: email, UserName: "demo", Password: hash, FullName: "Demo Seller"}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
	case err != nil:
		log.Fatalf("failed to look up user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)

	existing, err := posts.ListByUser(ctx, u.ID)
	if err != nil {
		log.Fatalf("failed to list posts: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("user already has %d posts, skipping catalog\n", len(existing))
		return
	}
	for _, pr := range catalog {
		p := &entity.Post{
			UserID:      u.ID,
			Title:       pr.title,
			Description: "Seeded " + pr.category + " item",
			Category:    pr.category,
			Price:       pr.price,
			Stock:       pr.stock,
			InStock:     pr.stock > 0,
			ImageURL:    "https://placehold.co/600x400?text=" + pr.category,
		}
		if err := p.ApplyDiscount(pr.discount); err != nil {
			log.Fatalf("discount for %s: %v", pr.title, err)
		}
		if err := posts.Create(ctx, p); err != nil {
			log.Fatalf("failed to seed %s: %v", pr.title, err)
		}
		fmt.Printf("seeded post: id=%s title=%q price=%.2f discount=%.2f\n", p.ID, p.Title, p.Price, p.DiscountPrice)
	}
}
