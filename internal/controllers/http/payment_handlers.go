package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"shop-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req CheckoutRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.checkout.CreateCheckoutSession(c.Request.Context(), req.toService())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CheckoutResponse{URL: res.URL})
}

// Webhook must see the body byte for byte; signature verification fails on
// any re-encoding.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("payload exceeds %d bytes", tooLarge.Limit)})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}

	err = h.webhook.Process(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidSignature.Message})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) GenerateReceipt(c *gin.Context) {
	id, ok := parseID(c, "orderId")
	if !ok {
		return
	}
	file, err := h.receipts.Generate(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	log.Printf("Receipt generated for order %d", id)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, "application/pdf", file.Content)
}
