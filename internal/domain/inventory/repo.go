package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage operations for stock items.
// AdjustQuantity must apply the delta atomically: the guard
// (quantity + delta >= 0) and the write happen in one statement.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Item, int, error)
	ListByCategory(ctx context.Context, category string) ([]*Item, error)
	ListLowStock(ctx context.Context) ([]*Item, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*Item, error)
	Stats(ctx context.Context) (*Stats, error)
}
