package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

type CartHandler struct {
	Svc    CartUseCase
	Logger *logrus.Logger
}

func NewCartHandler(svc CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Svc: svc, Logger: logger}
}

type addToCartRequest struct {
	Quantity quantity `json:"quantity"`
}

type removeFromCartRequest struct {
	Quantity       quantity `json:"quantity"`
	RemoveEntirely bool     `json:"removeEntirely"`
	Flag           bool     `json:"flag"`
}

// quantity accepts a JSON number or a numeric string. Anything else, and any
// value below 1, decodes to 0, which the cart service treats as 1.
type quantity int

func (q *quantity) UnmarshalJSON(b []byte) error {
	*q = 0
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if f >= 1 && f <= math.MaxInt32 {
		*q = quantity(f)
	}
	return nil
}

// bindOptionalJSON binds the body when present; an empty body keeps defaults.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Add POST /api/cart/:productId
func (h *CartHandler) Add(c *gin.Context) {
	var req addToCartRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cart, err := h.Svc.AddItem(c.Request.Context(), currentUser(c), c.Param("productId"), int(req.Quantity))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCart(cart), "Product added to cart", nil)
}

// Remove DELETE /api/cart/:productId
func (h *CartHandler) Remove(c *gin.Context) {
	var req removeFromCartRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	cart, err := h.Svc.RemoveItem(c.Request.Context(), currentUser(c), c.Param("productId"), int(req.Quantity), req.RemoveEntirely || req.Flag)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCart(cart), "Cart updated", nil)
}

// List GET /api/cart
func (h *CartHandler) List(c *gin.Context) {
	view, err := h.Svc.ListCart(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCartView(view), "Cart retrieved", nil)
}
