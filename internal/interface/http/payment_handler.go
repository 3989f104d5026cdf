package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
)

const (
	SignatureHeader = "Stripe-Signature"
	maxWebhookBytes = 64 << 10
)

type PaymentHandler struct {
	Svc    PaymentWebhookUseCase
	Logger *logrus.Logger
}

func NewPaymentHandler(svc PaymentWebhookUseCase, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

// Webhook POST /api/payments/webhook. The raw body is needed for signature checks.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	if err := h.Svc.HandlePaymentWebhook(c.Request.Context(), payload, c.GetHeader(SignatureHeader)); err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true}, "ok", nil)
}
