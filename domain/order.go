package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Order is the persisted order row. Attribution holds the acquisition
// context the tracking layer captured at purchase time (source, medium,
// campaign) as free-form JSON.
type Order struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	CustomerID  string            `gorm:"column:customer_id;not null;index" json:"customer_id"`
	OrderDate   time.Time         `gorm:"column:order_date;not null;index" json:"order_date"`
	Revenue     float64           `gorm:"column:revenue;not null" json:"revenue"`
	Attribution datatypes.JSONMap `gorm:"column:attribution;type:jsonb" json:"attribution"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// OrderRecord is the shaped analytics input: one row per order with the
// customer's first order date already resolved by the repository layer.
type OrderRecord struct {
	CustomerID     string    `json:"customer_id"`
	FirstOrderDate time.Time `json:"first_order_date"`
	OrderDate      time.Time `json:"order_date"`
	Revenue        float64   `json:"revenue"`
	Source         string    `json:"source,omitempty"`
}

// CustomerAggregate is one row per customer.
type CustomerAggregate struct {
	CustomerID     string    `json:"customer_id"`
	FirstOrderDate time.Time `json:"first_order_date"`
	LastOrderDate  time.Time `json:"last_order_date"`
	OrderCount     int       `json:"order_count"`
	TotalRevenue   float64   `json:"total_revenue"`
	AvgOrderValue  float64   `json:"avg_order_value"`
	Source         string    `json:"source,omitempty"`
}
