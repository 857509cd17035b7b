package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"shop-service/internal/domain"
	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

// bindStrictJSON decodes the body rejecting unknown fields, then runs the
// binding tags through gin's validator.
func bindStrictJSON(c *gin.Context, obj any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

type productRef struct {
	ID uint64 `json:"id" binding:"required"`
}

type checkoutItemRequest struct {
	Product  productRef `json:"product"`
	Quantity int        `json:"quantity" binding:"required,min=1,max=999"`
}

// CheckoutRequest column limits mirror domain.Order.
type CheckoutRequest struct {
	Items        []checkoutItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
	Email        string                `json:"email" binding:"required,email,max=254"`
	FirstName    string                `json:"firstName" binding:"required,max=100"`
	LastName     string                `json:"lastName" binding:"required,max=100"`
	Address      string                `json:"address" binding:"required,max=1000"`
	City         string                `json:"city" binding:"required,max=100"`
	Country      string                `json:"country" binding:"required,max=100"`
	PostalCode   string                `json:"postalCode" binding:"required,max=20"`
	Phone        string                `json:"phone" binding:"required,max=20"`
	ShippingCost *decimal.Decimal      `json:"shipping_cost" binding:"required"`
	Currency     string                `json:"currency" binding:"omitempty,len=3,alpha"`
}

func (r CheckoutRequest) toService() services.CheckoutRequest {
	out := services.CheckoutRequest{
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Address:    r.Address,
		City:       r.City,
		Country:    r.Country,
		PostalCode: r.PostalCode,
		Phone:      r.Phone,
		Currency:   r.Currency,
	}
	if r.ShippingCost != nil {
		out.ShippingCost = *r.ShippingCost
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, services.CheckoutItem{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return out
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type ProductRequest struct {
	Name            string          `json:"name" binding:"required,max=255"`
	Category        *uint64         `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Description     string          `json:"description"`
	Details         *string         `json:"details"`
	Image           string          `json:"image" binding:"max=500"`
	Video           *string         `json:"video"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges"`
	Featured        bool            `json:"featured"`
	Bestseller      bool            `json:"bestseller"`
	// Images is only honoured on create.
	Images []string `json:"images"`
}

func (r ProductRequest) toDomain() *domain.Product {
	p := &domain.Product{
		Name:            r.Name,
		CategoryID:      r.Category,
		Price:           r.Price,
		Description:     r.Description,
		Details:         r.Details,
		Image:           r.Image,
		Video:           r.Video,
		DeliveryCharges: r.DeliveryCharges,
		Featured:        r.Featured,
		Bestseller:      r.Bestseller,
	}
	for _, img := range r.Images {
		p.Images = append(p.Images, domain.ProductImage{Image: img})
	}
	return p
}

type ProductResponse struct {
	ID              uint64                `json:"id"`
	Name            string                `json:"name"`
	Category        *uint64               `json:"category"`
	CategoryName    *string               `json:"category_name"`
	Price           decimal.Decimal       `json:"price"`
	Description     string                `json:"description"`
	Details         *string               `json:"details"`
	Image           string                `json:"image"`
	Video           *string               `json:"video"`
	DeliveryCharges decimal.Decimal       `json:"delivery_charges"`
	Featured        bool                  `json:"featured"`
	Bestseller      bool                  `json:"bestseller"`
	Images          []domain.ProductImage `json:"images"`
}

func newProductResponse(p *domain.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []domain.ProductImage{}
	}
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.CategoryID,
		CategoryName:    p.CategoryName(),
		Price:           p.Price,
		Description:     p.Description,
		Details:         p.Details,
		Image:           p.Image,
		Video:           p.Video,
		DeliveryCharges: p.DeliveryCharges,
		Featured:        p.Featured,
		Bestseller:      p.Bestseller,
		Images:          images,
	}
}

func newProductResponses(ps []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for i := range ps {
		out = append(out, newProductResponse(&ps[i]))
	}
	return out
}

type ProductImageRequest struct {
	Image string `json:"image" binding:"required,max=500"`
}

type CollectionRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	Image       string   `json:"image" binding:"max=500"`
	Products    []uint64 `json:"products"`
}

type CollectionResponse struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Products    []uint64 `json:"products"`
}

func newCollectionResponse(c *domain.Collection) CollectionResponse {
	return CollectionResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		Products:    c.ProductIDs(),
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff}
}

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// parseBool accepts the usual truthy query values.
func parseBool(v string) (bool, error) {
	switch v {
	case "1", "true", "True", "yes":
		return true, nil
	case "0", "false", "False", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
