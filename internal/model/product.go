package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a catalog entry. StoreID repeats the tenant id on every row in
// addition to the schema boundary.
type Product struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       string         `json:"price" gorm:"type:numeric(10,2);not null"`
	CategoryID  *int64         `json:"category_id" gorm:"index"`
	Category    string         `json:"category" gorm:"type:varchar(100)"`
	Status      string         `json:"status" gorm:"type:varchar(30);not null"`
	Available   bool           `json:"available" gorm:"not null"`
	Stock       int            `json:"stock" gorm:"not null"`
	MinStock    int            `json:"min_stock" gorm:"not null"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	SKU         string         `json:"sku" gorm:"type:varchar(100)"`
	StoreID     int64          `json:"store_id" gorm:"index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewProduct carries the fields accepted when creating a product.
// Name is required; everything else defaults.
type NewProduct struct {
	Name        string
	Description *string
	Price       *string
	CategoryID  *int64
	Category    *string
	Status      *string
	Available   *bool
	Stock       *int
	MinStock    *int
	Images      []string
	SKU         *string
}

// ProductPatch is a sparse product update
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *string
	CategoryID  *int64
	Category    *string
	Status      *string
	Available   *bool
	Stock       *int
	MinStock    *int
	Images      *[]string
	SKU         *string
}

// Updates returns the set columns, stamped with updatedAt
func (p ProductPatch) Updates(updatedAt time.Time) map[string]interface{} {
	m := patchMap{}
	m.set("name", p.Name)
	m.set("description", p.Description)
	m.set("price", p.Price)
	m.set("category_id", p.CategoryID)
	m.set("category", p.Category)
	m.set("status", p.Status)
	m.set("available", p.Available)
	m.set("stock", p.Stock)
	m.set("min_stock", p.MinStock)
	if p.Images != nil {
		m["images"] = pq.StringArray(*p.Images)
	}
	m.set("sku", p.SKU)
	return m.stamp(updatedAt)
}
