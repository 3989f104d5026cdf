package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

type WishlistModule struct {
	Handler *handlers.WishlistHandler
	JWT     *helpers.JWTManager
}

func NewWishlistModule(h *handlers.WishlistHandler, jwt *helpers.JWTManager) *WishlistModule {
	return &WishlistModule{Handler: h, JWT: jwt}
}

func (m *WishlistModule) Register(rg *gin.RouterGroup) {
	auth := protected(rg, m.JWT, 120)
	{
		auth.GET("/wishlist", m.Handler.List)
		auth.POST("/wishlist/:id", m.Handler.Add)
		auth.DELETE("/wishlist/:id", m.Handler.Remove)
	}
}
