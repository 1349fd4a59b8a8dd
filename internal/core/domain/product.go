package domain

import "time"

// MaxInventory is the width of the INT inventory column. Writes above
// this value are rejected before they reach the database.
const MaxInventory = 2147483647

type Product struct {
	ID         int64      `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Category   string     `db:"category" json:"category"`
	Material   string     `db:"material" json:"material"`
	ThreadSize string     `db:"thread_size" json:"threadSize"`
	Finish     string     `db:"finish" json:"finish"`
	Quantity   int        `db:"quantity" json:"quantity"`
	Price      float64    `db:"price" json:"price"`
	Inventory  int        `db:"inventory" json:"inventory"`
	Version    int        `db:"version" json:"version"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// NewProduct carries the fields a caller supplies when creating a
// catalog entry; id, version and timestamps are assigned by storage.
type NewProduct struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Material   string  `json:"material"`
	ThreadSize string  `json:"threadSize"`
	Finish     string  `json:"finish"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Inventory  int     `json:"inventory"`
}

// CatalogFilter narrows a catalog listing. Empty fields match all rows.
type CatalogFilter struct {
	Category   string
	Material   string
	ThreadSize string
	Finish     string
}
