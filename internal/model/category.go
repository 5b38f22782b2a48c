package model

import "time"

// Category groups products. Not every store schema has a categories table.
type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory carries the fields accepted when creating a category
type NewCategory struct {
	Name        string
	Description *string
}

// DefaultCategories is served to stores whose schema has no categories table
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "General", Description: "General products", IsActive: true},
		{ID: 2, Name: "Furniture", Description: "Furniture and fixtures", IsActive: true},
		{ID: 3, Name: "Appliances", Description: "Home appliances", IsActive: true},
		{ID: 4, Name: "Installation", Description: "Installation services", IsActive: true},
		{ID: 5, Name: "Accessories", Description: "Parts and accessories", IsActive: true},
	}
}
