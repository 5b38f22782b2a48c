package model

import "time"

// Notification belongs to a user
type Notification struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	UserID         int64     `json:"user_id" gorm:"index;not null"`
	Type           string    `json:"type" gorm:"type:varchar(50)"`
	Title          string    `json:"title" gorm:"type:varchar(255)"`
	Message        string    `json:"message" gorm:"type:text"`
	IsRead         bool      `json:"is_read" gorm:"not null"`
	RelatedOrderID *int64    `json:"related_order_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewNotification carries the fields accepted when creating a notification
type NewNotification struct {
	UserID         int64
	Type           string
	Title          string
	Message        string
	RelatedOrderID *int64
}

// NotificationCounts aggregates a user's notifications
type NotificationCounts struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}
