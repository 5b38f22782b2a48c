package model

import "time"

// User is a store staff account. Accounts are provisioned elsewhere.
type User struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Username    string     `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email       string     `json:"email" gorm:"type:varchar(255)"`
	FullName    string     `json:"full_name" gorm:"type:varchar(255)"`
	Role        string     `json:"role" gorm:"type:varchar(50)"`
	Status      string     `json:"status" gorm:"type:varchar(30)"`
	Phone       string     `json:"phone" gorm:"type:varchar(30)"`
	Department  string     `json:"department" gorm:"type:varchar(100)"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserPatch is a sparse user update
type UserPatch struct {
	Email       *string
	FullName    *string
	Role        *string
	Status      *string
	Phone       *string
	Department  *string
	LastLoginAt *time.Time
}

// Updates returns the set columns, stamped with updatedAt
func (p UserPatch) Updates(updatedAt time.Time) map[string]interface{} {
	m := patchMap{}
	m.set("email", p.Email)
	m.set("full_name", p.FullName)
	m.set("role", p.Role)
	m.set("status", p.Status)
	m.set("phone", p.Phone)
	m.set("department", p.Department)
	m.set("last_login_at", p.LastLoginAt)
	return m.stamp(updatedAt)
}
