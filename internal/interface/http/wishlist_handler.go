package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
)

type WishlistHandler struct {
	Svc    WishlistUseCase
	Logger *logrus.Logger
}

func NewWishlistHandler(svc WishlistUseCase, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{Svc: svc, Logger: logger}
}

// Add POST /api/wishlist/:id
func (h *WishlistHandler) Add(c *gin.Context) {
	w, post, err := h.Svc.Add(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wishlist": toWishlist(w), "product": toSummary(post)}, "Post added to wishlist", nil)
}

// Remove DELETE /api/wishlist/:id
func (h *WishlistHandler) Remove(c *gin.Context) {
	w, err := h.Svc.Remove(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toWishlist(w), "Post removed from wishlist", nil)
}

// List GET /api/wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	w, err := h.Svc.List(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toWishlist(w), "Wishlist retrieved", nil)
}
