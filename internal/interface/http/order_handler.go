package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderHandler struct {
	Svc    OrderUseCase
	Logger *logrus.Logger
}

func NewOrderHandler(svc OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

// placeOrderRequest keeps the shipping fields flat; the service reports missing ones.
type placeOrderRequest struct {
	FullName      string `json:"fullName"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"paymentMethod"`
}

// Place POST /api/orders
func (h *OrderHandler) Place(c *gin.Context) {
	var req placeOrderRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Place(c.Request.Context(), currentUser(c), application.PlaceOrderInput{
		Shipping: entity.ShippingAddress{
			FullName:   req.FullName,
			Address:    req.Address,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
			Phone:      req.Phone,
		},
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}

	var meta any
	if res.Replayed {
		meta = gin.H{"replayed": true}
	}
	if res.Order.PaymentMethod == entity.PaymentOnline {
		response.Success(c, http.StatusOK, gin.H{
			"url":       res.CheckoutURL,
			"sessionId": res.SessionID,
			"order":     toOrder(res.Order),
		}, "Checkout session created", meta)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	response.Success(c, status, toOrder(res.Order), "Order placed successfully", meta)
}

// List GET /api/orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.Svc.ListOrders(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrder(&orders[i]))
	}
	response.Success(c, http.StatusOK, out, "Orders retrieved", map[string]any{"count": len(out)})
}

// Get GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.Svc.GetOrder(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toOrder(o), "Order retrieved", nil)
}

// Cancel POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.Svc.CancelOrder(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toOrder(o), "Order cancelled", nil)
}
