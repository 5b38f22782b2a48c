package model

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order is a customer order inside a tenant schema
type Order struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	OrderNumber       string    `json:"order_number" gorm:"type:varchar(50);uniqueIndex"`
	CustomerID        *int64    `json:"customer_id" gorm:"index"`
	Status            string    `json:"status" gorm:"type:varchar(30);not null"`
	Subtotal          string    `json:"subtotal" gorm:"type:numeric(10,2);not null"`
	InstallationTotal string    `json:"installation_total" gorm:"type:numeric(10,2);not null"`
	DeliveryTotal     string    `json:"delivery_total" gorm:"type:numeric(10,2);not null"`
	TotalAmount       string    `json:"total_amount" gorm:"type:numeric(10,2);not null"`
	Notes             string    `json:"notes" gorm:"type:text"`
	AssignedUserID    *int64    `json:"assigned_user_id" gorm:"index"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OrderItem is one product line of an order
type OrderItem struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	OrderID          int64     `json:"order_id" gorm:"index;not null"`
	ProductID        int64     `json:"product_id" gorm:"index;not null"`
	Quantity         int       `json:"quantity" gorm:"not null"`
	UnitPrice        string    `json:"unit_price" gorm:"type:numeric(10,2);not null"`
	TotalPrice       string    `json:"total_price" gorm:"type:numeric(10,2);not null"`
	InstallationCost *string   `json:"installation_cost" gorm:"type:numeric(10,2)"`
	LaborCost        *string   `json:"labor_cost" gorm:"type:numeric(10,2)"`
	DeliveryCost     *string   `json:"delivery_cost" gorm:"type:numeric(10,2)"`
	Notes            string    `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OrderItemWithProduct is an order item joined with its product's display data
type OrderItemWithProduct struct {
	OrderItem
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	ProductPrice       string `json:"product_price"`
	ProductCategory    string `json:"product_category"`
}

// NewOrder carries the fields accepted when creating an order.
// Nil pointers take the documented defaults.
type NewOrder struct {
	OrderNumber       *string
	CustomerID        *int64
	Status            *string
	Subtotal          *string
	InstallationTotal *string
	DeliveryTotal     *string
	TotalAmount       *string
	Notes             *string
	AssignedUserID    *int64
}

// NewOrderItem carries the fields accepted when creating an order item.
// OrderID is ignored when the item is created together with its order.
type NewOrderItem struct {
	OrderID          int64
	ProductID        int64
	Quantity         int
	UnitPrice        string
	TotalPrice       *string
	InstallationCost *string
	LaborCost        *string
	DeliveryCost     *string
	Notes            *string
}

// OrderPatch is a sparse order update; nil fields are left unchanged
type OrderPatch struct {
	CustomerID        *int64
	Status            *string
	Subtotal          *string
	InstallationTotal *string
	DeliveryTotal     *string
	TotalAmount       *string
	Notes             *string
	AssignedUserID    *int64
}

// Updates returns the set columns, stamped with updatedAt
func (p OrderPatch) Updates(updatedAt time.Time) map[string]interface{} {
	m := patchMap{}
	m.set("customer_id", p.CustomerID)
	m.set("status", p.Status)
	m.set("subtotal", p.Subtotal)
	m.set("installation_total", p.InstallationTotal)
	m.set("delivery_total", p.DeliveryTotal)
	m.set("total_amount", p.TotalAmount)
	m.set("notes", p.Notes)
	m.set("assigned_user_id", p.AssignedUserID)
	return m.stamp(updatedAt)
}

// OrderItemPatch is a sparse order item update
type OrderItemPatch struct {
	Quantity         *int
	UnitPrice        *string
	TotalPrice       *string
	InstallationCost *string
	LaborCost        *string
	DeliveryCost     *string
	Notes            *string
}

// Updates returns the set columns, stamped with updatedAt
func (p OrderItemPatch) Updates(updatedAt time.Time) map[string]interface{} {
	m := patchMap{}
	m.set("quantity", p.Quantity)
	m.set("unit_price", p.UnitPrice)
	m.set("total_price", p.TotalPrice)
	m.set("installation_cost", p.InstallationCost)
	m.set("labor_cost", p.LaborCost)
	m.set("delivery_cost", p.DeliveryCost)
	m.set("notes", p.Notes)
	return m.stamp(updatedAt)
}
