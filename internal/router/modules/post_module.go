package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

// PostModule wires the seller catalog routes. Every route needs a bearer token.
type PostModule struct {
	Handler *handlers.PostHandler
	JWT     *helpers.JWTManager
}

func NewPostModule(h *handlers.PostHandler, jwt *helpers.JWTManager) *PostModule {
	return &PostModule{Handler: h, JWT: jwt}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	auth := protected(rg, m.JWT, 120)
	{
		auth.POST("/posts", m.Handler.Create)
		auth.GET("/posts", m.Handler.ListMine)
		auth.DELETE("/posts", m.Handler.DeleteAllMine)
		auth.GET("/posts/search", m.Handler.Search)
		auth.GET("/posts/:id", m.Handler.Get)
		auth.PUT("/posts/:id", m.Handler.Update)
		auth.DELETE("/posts/:id", m.Handler.Delete)
	}
}
