package mysql

import (
	"context"
	"errors"
	"log"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) FindProductsByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Product, error) {
	out := make(map[uint64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ps []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ps).Error; err != nil {
		log.Printf("FindProductsByIDs error: %v", err)
		return nil, err
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}

func (r *catalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) FindCategory(ctx context.Context, id uint64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepo) SaveCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Save(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &domain.Error{Kind: domain.KindConflict, Message: "category with this name already exists", Fields: map[string]string{"name": "must be unique"}}
	}
	return err
}

func (r *catalogRepo) DeleteCategory(ctx context.Context, id uint64) (bool, error) {
	// Products keep existing with a NULL category.
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Category{}, id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

func (r *catalogRepo) productQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *catalogRepo) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := r.productQuery(ctx)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.Bestseller != nil {
		q = q.Where("bestseller = ?", *f.Bestseller)
	}
	var out []domain.Product
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		log.Printf("ListProducts error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) FindProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.productQuery(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepo) SaveProduct(ctx context.Context, p *domain.Product) error {
	db := r.db.WithContext(ctx)
	var err error
	if p.ID == 0 {
		// Images are created together with a new product.
		err = db.Omit("Category").Create(p).Error
	} else {
		err = db.Omit(clause.Associations).Save(p).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.NewValidationError("invalid category", map[string]string{"category": "category does not exist"})
		}
		log.Printf("SaveProduct error: %v", err)
		return err
	}
	return nil
}

func (r *catalogRepo) DeleteProduct(ctx context.Context, id uint64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Historical order lines keep their snapshot and lose the reference.
		if err := tx.Model(&domain.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM collection_products WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Product{}, id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

func (r *catalogRepo) AddProductImage(ctx context.Context, img *domain.ProductImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *catalogRepo) DeleteProductImage(ctx context.Context, productID, imageID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).Delete(&domain.ProductImage{})
	return res.RowsAffected > 0, res.Error
}

func (r *catalogRepo) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var out []domain.Collection
	if err := r.db.WithContext(ctx).Preload("Products").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) FindCollection(ctx context.Context, id uint64) (*domain.Collection, error) {
	var c domain.Collection
	if err := r.db.WithContext(ctx).Preload("Products").First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepo) SaveCollection(ctx context.Context, c *domain.Collection, productIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products []domain.Product
		if len(productIDs) > 0 {
			if err := tx.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
				return err
			}
			found := make(map[uint64]bool, len(products))
			for _, p := range products {
				found[p.ID] = true
			}
			for _, id := range productIDs {
				if !found[id] {
					return domain.ProductNotFound(id)
				}
			}
		}

		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}

		assoc := tx.Model(c).Association("Products")
		if len(products) == 0 {
			c.Products = nil
			return assoc.Clear()
		}
		if err := assoc.Replace(products); err != nil {
			return err
		}
		c.Products = products
		return nil
	})
}

func (r *catalogRepo) DeleteCollection(ctx context.Context, id uint64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM collection_products WHERE collection_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Collection{}, id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}
