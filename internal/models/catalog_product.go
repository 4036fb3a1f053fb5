package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogProduct is the stored snapshot of a normalized product from the last sync.
type CatalogProduct struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	ExternalID  string    `json:"external_id" gorm:"not null;uniqueIndex:idx_catalog_products_category_external"`
	Category    Category  `json:"category" gorm:"not null;uniqueIndex:idx_catalog_products_category_external"`
	Name        string    `json:"name" gorm:"not null"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2)"`
	Image       string    `json:"image"`
	InStock     bool      `json:"in_stock"`
	SyncedAt    time.Time `json:"synced_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCatalogProduct(p Product, syncedAt time.Time) *CatalogProduct {
	return &CatalogProduct{
		ExternalID:  p.ID,
		Category:    p.Category,
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		InStock:     p.InStock,
		SyncedAt:    syncedAt,
	}
}

// Product converts the stored row back to the storefront shape.
func (cp *CatalogProduct) Product() Product {
	return Product{
		ID:          cp.ExternalID,
		Name:        cp.Name,
		Brand:       cp.Brand,
		Description: cp.Description,
		Price:       cp.Price,
		Image:       cp.Image,
		Category:    cp.Category,
		CategoryID:  cp.Category.UpstreamID(),
		InStock:     cp.InStock,
	}
}

func (cp *CatalogProduct) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	return nil
}
