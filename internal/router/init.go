package router

import (
	"time"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/container"
	pginfra "github.com/oksasatya/go-ecommerce-backend/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/internal/interface/middleware"
	"github.com/oksasatya/go-ecommerce-backend/internal/router/modules"
)

// unlimitedPaths skip the global per-IP limiter.
var unlimitedPaths = []string{"/api/payments/webhook", "/api/health"}

type repos struct {
	users     *pginfra.UserRepository
	posts     *pginfra.PostRepository
	carts     *pginfra.CartRepository
	wishlists *pginfra.WishlistRepository
	orders    *pginfra.OrderRepository
}

func buildRepos() repos {
	pool := container.GetPGPool()
	return repos{
		users:     pginfra.NewUserRepository(pool),
		posts:     pginfra.NewPostRepository(pool),
		carts:     pginfra.NewCartRepository(pool),
		wishlists: pginfra.NewWishlistRepository(pool),
		orders:    pginfra.NewOrderRepository(pool),
	}
}

type services struct {
	users     *application.UserService
	posts     *application.PostService
	carts     *application.CartService
	wishlists *application.WishlistService
	orders    *application.OrderService
}

func buildServices(r repos) services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	media := container.GetMedia()
	index := container.GetPostIndex()

	notifier := application.NewNotifier(container.Jobs(), cfg, logger)
	cascade := application.NewCascadeService(r.posts, r.carts, r.wishlists, media, index, logger)

	return services{
		users:     application.NewUserService(r.users, container.GetJWT(), media, container.GetRedis(), cascade, notifier, logger),
		posts:     application.NewPostService(r.posts, media, index, cfg.CloudinaryFolder, logger),
		carts:     application.NewCartService(r.carts, r.posts, logger),
		wishlists: application.NewWishlistService(r.wishlists, r.posts, logger),
		orders:    application.NewOrderService(r.orders, r.carts, r.users, container.GetPayments(), notifier, cfg, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	svc := buildServices(buildRepos())

	r.Use(middleware.RateLimit(container.GetRedis(), 600, time.Minute, middleware.KeyByIPAndPath(),
		middleware.AnyOf(middleware.AllowPrivateIP(), middleware.AllowPaths(unlimitedPaths...))))

	r.Add(modules.NewUserModule(
		handlers.NewUserHandler(svc.users, logger, cfg.CookieDomain, cfg.CookieSecure, cfg.MaxUploadBytes()), jwt))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(svc.posts, logger, cfg.MaxUploadBytes()), jwt))
	r.Add(modules.NewCartModule(handlers.NewCartHandler(svc.carts, logger), jwt))
	r.Add(modules.NewWishlistModule(handlers.NewWishlistHandler(svc.wishlists, logger), jwt))
	r.Add(modules.NewOrderModule(
		handlers.NewOrderHandler(svc.orders, logger),
		handlers.NewPaymentHandler(svc.orders, logger),
		jwt,
	))
	r.Add(modules.NewDebugModule(handlers.NewHealthHandler(container.GetPGPool(), logger), cfg.DebugMetricsEnabled))
}
