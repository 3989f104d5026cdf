package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/container"
	"github.com/oksasatya/go-ecommerce-backend/internal/interface/middleware"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

// protected returns a group behind bearer auth with a per-user rate limit.
func protected(rg *gin.RouterGroup, jwt *helpers.JWTManager, perMinute int) *gin.RouterGroup {
	g := rg.Group("/")
	g.Use(middleware.Auth(container.GetRedis(), jwt, application.SessionKey))
	g.Use(middleware.RateLimit(container.GetRedis(), perMinute, time.Minute, middleware.KeyByUserID(), nil))
	return g
}

func perIP(max int) gin.HandlerFunc {
	return middleware.RateLimit(container.GetRedis(), max, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
}
