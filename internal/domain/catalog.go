package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description *string `json:"description" gorm:"type:text"`
	Image       *string `json:"image" gorm:"size:500"`
}

type Product struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string          `json:"name" gorm:"size:255;not null"`
	CategoryID      *uint64         `json:"category" gorm:"index"`
	Category        *Category       `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Description     string          `json:"description" gorm:"type:text;not null"`
	Details         *string         `json:"details" gorm:"type:text"`
	Image           string          `json:"image" gorm:"size:500;not null"`
	Video           *string         `json:"video" gorm:"size:500"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges" gorm:"type:decimal(10,2);not null;default:0"`
	Featured        bool            `json:"featured" gorm:"not null;default:false;index"`
	Bestseller      bool            `json:"bestseller" gorm:"not null;default:false;index"`
	Images          []ProductImage  `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// CategoryName is empty when the product is uncategorised or the category
// was not preloaded.
func (p *Product) CategoryName() *string {
	if p.Category == nil {
		return nil
	}
	name := p.Category.Name
	return &name
}

type ProductImage struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint64 `json:"-" gorm:"not null;index"`
	Image     string `json:"image" gorm:"size:500;not null"`
}

type Collection struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"size:500;not null"`
	Products    []Product `json:"-" gorm:"many2many:collection_products;constraint:OnDelete:CASCADE"`
}

func (c *Collection) ProductIDs() []uint64 {
	ids := make([]uint64, 0, len(c.Products))
	for _, p := range c.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// ProductFilter narrows product listings. Nil fields are not applied.
type ProductFilter struct {
	CategoryID *uint64
	Featured   *bool
	Bestseller *bool
}
