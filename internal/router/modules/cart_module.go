package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

type CartModule struct {
	Handler *handlers.CartHandler
	JWT     *helpers.JWTManager
}

func NewCartModule(h *handlers.CartHandler, jwt *helpers.JWTManager) *CartModule {
	return &CartModule{Handler: h, JWT: jwt}
}

func (m *CartModule) Register(rg *gin.RouterGroup) {
	auth := protected(rg, m.JWT, 120)
	{
		auth.GET("/cart", m.Handler.List)
		auth.POST("/cart/:productId", m.Handler.Add)
		auth.DELETE("/cart/:productId", m.Handler.Remove)
	}
}
