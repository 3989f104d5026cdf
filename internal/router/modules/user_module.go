package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

// UserModule wires account routes.
// Public: POST /api/users/signup, /api/users/signin, /api/users/refresh
// Protected: everything else under /api/users
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users/signup", perIP(10), m.Handler.Signup)
	rg.POST("/users/signin", perIP(10), m.Handler.Signin) // 10 req/min per IP
	rg.POST("/users/refresh", perIP(60), m.Handler.Refresh)

	auth := protected(rg, m.JWT, 120)
	{
		auth.POST("/users/logout", m.Handler.Logout)
		auth.GET("/users/me", m.Handler.Me)
		auth.PUT("/users/me", m.Handler.Update)
		auth.DELETE("/users/me", m.Handler.Delete)
		auth.POST("/users/me/avatar", m.Handler.UploadAvatar)
		auth.GET("/users", m.Handler.List)
		auth.GET("/users/:id", m.Handler.GetByID)
	}
}
