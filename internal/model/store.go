package model

import "time"

// Store is a tenant. It lives in the control schema and points at the
// tenant's own schema through DatabaseURL (a descriptor carrying schema=<name>).
type Store struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	DatabaseURL string    `json:"-" gorm:"column:database_url;type:text;not null"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the control table name
func (Store) TableName() string { return "stores" }
