package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

// OrderModule wires checkout. The payment webhook is public and authenticated
// by the gateway signature instead of a bearer token.
type OrderModule struct {
	Orders   *handlers.OrderHandler
	Payments *handlers.PaymentHandler
	JWT      *helpers.JWTManager
}

func NewOrderModule(orders *handlers.OrderHandler, payments *handlers.PaymentHandler, jwt *helpers.JWTManager) *OrderModule {
	return &OrderModule{Orders: orders, Payments: payments, JWT: jwt}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", m.Payments.Webhook)

	// placement is stricter than reads
	auth := protected(rg, m.JWT, 120)
	{
		auth.POST("/orders", perIP(30), m.Orders.Place)
		auth.GET("/orders", m.Orders.List)
		auth.GET("/orders/:id", m.Orders.Get)
		auth.POST("/orders/:id/cancel", m.Orders.Cancel)
	}
}
