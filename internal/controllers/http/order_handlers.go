package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PlaceOrder captures an order without a payment session.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.checkout.PlaceOrder(c.Request.Context(), req.toService())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	orders, err := h.orders.ListOrders(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrderById(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req OrderStatusRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
