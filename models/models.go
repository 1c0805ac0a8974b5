// Package models declares the persisted entities of the platform.
package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/order-inventory-platform/pg"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// User is a registered account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	pg.Model

	Email        string `bun:"email,unique,notnull"    json:"email"`
	Username     string `bun:"username,notnull"        json:"username"`
	PasswordHash string `bun:"password_hash,notnull"   json:"-"`
	Role         string `bun:"role,notnull"            json:"role"`
	IsActive     bool   `bun:"is_active"               json:"is_active"`

	Orders []*Order `bun:"rel:has-many,join:id=user_id" json:"orders,omitempty"`
}

// Product is a sellable inventory item. Price is stored in minor
// currency units to avoid floating point rounding.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`
	pg.Model

	SKU   string `bun:"sku,unique,notnull" json:"sku"`
	Name  string `bun:"name,notnull"       json:"name"`
	Price int64  `bun:"price,notnull"      json:"price"`
	Stock int64  `bun:"stock,notnull"      json:"stock"`
}

// Order is a user's purchase with its line items.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`
	pg.Model

	UserID int64  `bun:"user_id,notnull" json:"user_id"`
	Status string `bun:"status,notnull"  json:"status"`
	Total  int64  `bun:"total,notnull"   json:"total"`

	User  *User        `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Items []*OrderItem `bun:"rel:has-many,join:id=order_id"  json:"items,omitempty"`
}

// Task statuses.
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusSucceeded = "succeeded"
	TaskStatusFailed    = "failed"
)

// Task is a queued unit of background work. Payload is an opaque
// key-value document interpreted by the registered handler.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`
	pg.Model

	Name        string         `bun:"name,notnull"         json:"name"`
	Payload     map[string]any `bun:"payload,type:jsonb"   json:"payload"`
	Status      string         `bun:"status,notnull"       json:"status"`
	RunAt       time.Time      `bun:"run_at,nullzero"      json:"run_at"`
	Attempts    int            `bun:"attempts"             json:"attempts"`
	MaxAttempts int            `bun:"max_attempts"         json:"max_attempts"`
	LastError   string         `bun:"last_error"           json:"last_error,omitempty"`
}

// OrderItem is a single product line inside an order. UnitPrice captures
// the product price at purchase time.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`
	pg.Model

	OrderID   int64 `bun:"order_id,notnull"   json:"order_id"`
	ProductID int64 `bun:"product_id,notnull" json:"product_id"`
	Quantity  int64 `bun:"quantity,notnull"   json:"quantity"`
	UnitPrice int64 `bun:"unit_price,notnull" json:"unit_price"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
}
