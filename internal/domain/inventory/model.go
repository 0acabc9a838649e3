package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Item maps to the inventory table, the single stock entity for both
// medical supplies and dispensable drugs. (item_name, category) is
// unique.
type Item struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ItemName     string    `db:"item_name" json:"item_name"`
	Category     *string   `db:"category" json:"category,omitempty"`
	Quantity     int       `db:"quantity" json:"quantity"`
	Supplier     *string   `db:"supplier" json:"supplier,omitempty"`
	ReorderLevel int       `db:"reorder_level" json:"reorder_level"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// BelowReorderLevel reports the advisory low-stock signal. No reorder
// action is ever taken automatically.
func (i *Item) BelowReorderLevel() bool {
	return i.Quantity <= i.ReorderLevel
}

type CreateItemRequest struct {
	ItemName     string  `json:"item_name"`
	Category     *string `json:"category"`
	Quantity     *int    `json:"quantity"`
	Supplier     *string `json:"supplier"`
	ReorderLevel *int    `json:"reorder_level"`
}

type UpdateItemRequest struct {
	ItemName     *string `json:"item_name"`
	Category     *string `json:"category"`
	Quantity     *int    `json:"quantity"`
	Supplier     *string `json:"supplier"`
	ReorderLevel *int    `json:"reorder_level"`
}

func (r *UpdateItemRequest) empty() bool {
	return r.ItemName == nil && r.Category == nil && r.Quantity == nil &&
		r.Supplier == nil && r.ReorderLevel == nil
}

// AdjustmentResult is the /inventory/{id}/adjust-quantity response.
type AdjustmentResult struct {
	ItemID            uuid.UUID `json:"item_id"`
	ItemName          string    `json:"item_name"`
	PreviousQuantity  int       `json:"previous_quantity"`
	Adjustment        int       `json:"adjustment"`
	NewQuantity       int       `json:"new_quantity"`
	BelowReorderLevel bool      `json:"below_reorder_level"`
}

// CategoryView is the /inventory/category/{c} response.
type CategoryView struct {
	Category      string  `json:"category"`
	TotalItems    int     `json:"total_items"`
	TotalQuantity int     `json:"total_quantity"`
	Items         []*Item `json:"items"`
}

// CategoryStats is one row of the stats breakdown; null categories
// report as "Uncategorized".
type CategoryStats struct {
	Category      string `json:"category"`
	ItemCount     int    `json:"item_count"`
	TotalQuantity int    `json:"total_quantity"`
}

// Stats is the /inventory/stats/summary response.
type Stats struct {
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	LowStockCount int             `json:"low_stock_count"`
	Categories    []CategoryStats `json:"categories"`
}

// ListFilter narrows the inventory listing.
type ListFilter struct {
	Category     *string
	LowStockOnly bool
}
