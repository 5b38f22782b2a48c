package model

import "time"

// Customer is identified within a store by phone number
type Customer struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Phone       string     `json:"phone" gorm:"type:varchar(30);uniqueIndex;not null"`
	Name        string     `json:"name" gorm:"type:varchar(255)"`
	Email       string     `json:"email" gorm:"type:varchar(255)"`
	WhatsappID  string     `json:"whatsapp_id" gorm:"column:whatsapp_id;type:varchar(100)"`
	Address     string     `json:"address" gorm:"type:text"`
	Notes       string     `json:"notes" gorm:"type:text"`
	LastContact *time.Time `json:"last_contact"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewCustomer carries the fields accepted when creating a customer
type NewCustomer struct {
	Phone      string
	Name       *string
	Email      *string
	WhatsappID *string
	Address    *string
	Notes      *string
}

// CustomerPatch is a sparse customer update
type CustomerPatch struct {
	Name        *string
	Email       *string
	WhatsappID  *string
	Address     *string
	Notes       *string
	LastContact *time.Time
}

// Updates returns the set columns, stamped with updatedAt
func (p CustomerPatch) Updates(updatedAt time.Time) map[string]interface{} {
	m := patchMap{}
	m.set("name", p.Name)
	m.set("email", p.Email)
	m.set("whatsapp_id", p.WhatsappID)
	m.set("address", p.Address)
	m.set("notes", p.Notes)
	m.set("last_contact", p.LastContact)
	return m.stamp(updatedAt)
}
