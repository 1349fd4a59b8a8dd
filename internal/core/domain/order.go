package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses is the recognized status set, in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID           int64           `db:"id" json:"id"`
	CustomerName string          `db:"customer_name" json:"customerName"`
	Status       OrderStatus     `db:"status" json:"status"`
	Version      int             `db:"version" json:"version"`
	LineItems    []OrderLineItem `json:"lineItems"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
	DeletedAt    *time.Time      `db:"deleted_at" json:"deletedAt,omitempty"`
}

// OrderLineItem is one product-and-quantity entry within an order,
// hydrated with the product it references.
type OrderLineItem struct {
	OrderID   int64     `db:"order_id" json:"orderId"`
	ProductID int64     `db:"product_id" json:"productId"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
