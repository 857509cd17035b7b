package repository

import (
	"context"

	"shop-service/internal/domain"
)

type CatalogRepository interface {
	FindProductsByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Product, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)
	FindCategory(ctx context.Context, id uint64) (*domain.Category, error)
	SaveCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id uint64) (bool, error)

	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	FindProduct(ctx context.Context, id uint64) (*domain.Product, error)
	SaveProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id uint64) (bool, error)
	AddProductImage(ctx context.Context, img *domain.ProductImage) error
	DeleteProductImage(ctx context.Context, productID, imageID uint64) (bool, error)

	ListCollections(ctx context.Context) ([]domain.Collection, error)
	FindCollection(ctx context.Context, id uint64) (*domain.Collection, error)
	// SaveCollection replaces the product set with productIDs.
	SaveCollection(ctx context.Context, c *domain.Collection, productIDs []uint64) error
	DeleteCollection(ctx context.Context, id uint64) (bool, error)
}
