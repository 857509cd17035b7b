package services

import (
	"context"
	"errors"
	"strings"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

type CatalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(r repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: r}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cs, err := s.repo.ListCategories(ctx)
	if cs == nil && err == nil {
		cs = []domain.Category{}
	}
	return cs, err
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint64) (*domain.Category, error) {
	c, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (s *CatalogService) SaveCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, domain.NewValidationError("invalid category", map[string]string{"name": "is required"})
	}
	if len(c.Name) > 100 {
		return nil, domain.NewValidationError("invalid category", map[string]string{"name": "must be at most 100 characters"})
	}
	if c.ID != 0 {
		if _, err := s.GetCategory(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.SaveCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint64) error {
	ok, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	ps, err := s.repo.ListProducts(ctx, f)
	if ps == nil && err == nil {
		ps = []domain.Product{}
	}
	return ps, err
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, p *domain.Product) error {
	fields := map[string]string{}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		fields["name"] = "is required"
	}
	if strings.TrimSpace(p.Description) == "" {
		fields["description"] = "is required"
	}
	if strings.TrimSpace(p.Image) == "" {
		fields["image"] = "is required"
	}
	if p.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if p.DeliveryCharges.IsNegative() {
		fields["delivery_charges"] = "must not be negative"
	}
	if p.CategoryID != nil {
		c, err := s.repo.FindCategory(ctx, *p.CategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			fields["category"] = "category does not exist"
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError("invalid product", fields)
	}
	return nil
}

// CreateProduct stores the product together with its additional images.
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	p.ID = 0
	if err := s.validateProduct(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID)
}

// UpdateProduct replaces the product's fields. Images are managed through
// AddProductImage and DeleteProductImage.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint64, p *domain.Product) (*domain.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.Images = nil
	if err := s.validateProduct(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint64) error {
	ok, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProductNotFound
	}
	return nil
}

func (s *CatalogService) AddProductImage(ctx context.Context, productID uint64, image string) (*domain.ProductImage, error) {
	if strings.TrimSpace(image) == "" {
		return nil, domain.NewValidationError("invalid image", map[string]string{"image": "is required"})
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	img := &domain.ProductImage{ProductID: productID, Image: image}
	if err := s.repo.AddProductImage(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *CatalogService) DeleteProductImage(ctx context.Context, productID, imageID uint64) error {
	ok, err := s.repo.DeleteProductImage(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrImageNotFound
	}
	return nil
}

func (s *CatalogService) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	cs, err := s.repo.ListCollections(ctx)
	if cs == nil && err == nil {
		cs = []domain.Collection{}
	}
	return cs, err
}

func (s *CatalogService) GetCollection(ctx context.Context, id uint64) (*domain.Collection, error) {
	c, err := s.repo.FindCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCollectionNotFound
	}
	return c, nil
}

func (s *CatalogService) SaveCollection(ctx context.Context, c *domain.Collection, productIDs []uint64) (*domain.Collection, error) {
	fields := map[string]string{}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		fields["name"] = "is required"
	}
	if strings.TrimSpace(c.Description) == "" {
		fields["description"] = "is required"
	}
	if strings.TrimSpace(c.Image) == "" {
		fields["image"] = "is required"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("invalid collection", fields)
	}
	if c.ID != 0 {
		if _, err := s.GetCollection(ctx, c.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveCollection(ctx, c, productIDs); err != nil {
		var de *domain.Error
		if errors.Is(err, domain.ErrProductNotFound) && errors.As(err, &de) {
			return nil, domain.NewValidationError("invalid collection", map[string]string{"products": de.Message})
		}
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCollection(ctx context.Context, id uint64) error {
	ok, err := s.repo.DeleteCollection(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCollectionNotFound
	}
	return nil
}
