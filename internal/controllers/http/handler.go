package http

import (
	"context"
	"log"
	"net/http"

	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
)

// Services groups what the handlers call into.
type Services struct {
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Checkout *services.CheckoutService
	Webhook  *services.WebhookService
	Receipts *services.ReceiptService
	Auth     *services.AuthService
}

type Handler struct {
	catalog      *services.CatalogService
	orders       *services.OrderService
	checkout     *services.CheckoutService
	webhook      *services.WebhookService
	receipts     *services.ReceiptService
	auth         *services.AuthService
	cache        *catalogCache
	ping         func(ctx context.Context) error
	secureCookie bool
}

// NewHandler wires the API. rdb may be nil, in which case catalog reads are
// not cached.
func NewHandler(s Services, rdb CacheClient) *Handler {
	h := &Handler{
		catalog:  s.Catalog,
		orders:   s.Orders,
		checkout: s.Checkout,
		webhook:  s.Webhook,
		receipts: s.Receipts,
		auth:     s.Auth,
	}
	if rdb != nil {
		h.cache = newCatalogCache(rdb)
	}
	return h
}

// WithHealthCheck sets the dependency check behind GET /api/health.
func (h *Handler) WithHealthCheck(ping func(ctx context.Context) error) *Handler {
	h.ping = ping
	return h
}

func (h *Handler) WithSecureCookie(secure bool) *Handler {
	h.secureCookie = secure
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", h.Health)

	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:id", h.GetCategory)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/collections", h.ListCollections)
	api.GET("/collections/:id", h.GetCollection)

	api.POST("/orders", h.PlaceOrder)

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	payments := api.Group("/payments")
	payments.POST("/create-checkout-session", h.CreateCheckoutSession)
	payments.POST("/webhook", h.Webhook)
	payments.GET("/generate-receipt/:orderId", h.GenerateReceipt)

	authed := api.Group("", h.authenticate)
	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)

	admin := authed.Group("", requireStaff)
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.POST("/products/:id/images", h.AddProductImage)
	admin.DELETE("/products/:id/images/:imageId", h.DeleteProductImage)
	admin.POST("/collections", h.CreateCollection)
	admin.PUT("/collections/:id", h.UpdateCollection)
	admin.DELETE("/collections/:id", h.DeleteCollection)
	admin.GET("/orders", h.ListOrders)
	admin.GET("/orders/:id", h.GetOrder)
	admin.PATCH("/orders/:id", h.UpdateOrderStatus)
}

func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			log.Printf("Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
