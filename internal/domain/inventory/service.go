package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const defaultReorderLevel = 10

var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrItemExists        = errors.New("item with this name and category already exists")
	ErrInsufficientStock = errors.New("quantity cannot be negative")
	ErrNoFields          = errors.New("no fields to update")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *CreateItemRequest) (*Item, error) {
	if req.ItemName == "" {
		return nil, fmt.Errorf("item_name is required")
	}
	item := &Item{
		ItemName:     req.ItemName,
		Category:     req.Category,
		Supplier:     req.Supplier,
		ReorderLevel: defaultReorderLevel,
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("quantity cannot be negative")
		}
		item.Quantity = *req.Quantity
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateItemRequest) (*Item, error) {
	if req.empty() {
		return nil, ErrNoFields
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrItemNotFound
	}
	if req.ItemName != nil {
		item.ItemName = *req.ItemName
	}
	if req.Category != nil {
		item.Category = req.Category
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("quantity cannot be negative")
		}
		item.Quantity = *req.Quantity
	}
	if req.Supplier != nil {
		item.Supplier = req.Supplier
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrItemNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Item, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Item{}
	}
	return items, total, nil
}

// AdjustQuantity applies a signed stock delta. A delta that would take
// the quantity negative leaves the row untouched and fails.
func (s *Service) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*AdjustmentResult, error) {
	item, err := s.repo.AdjustQuantity(ctx, id, delta)
	if err != nil {
		// The guarded update matched no row: either the item does not
		// exist or the delta would underflow. Re-read to tell them apart.
		if _, getErr := s.repo.GetByID(ctx, id); getErr != nil {
			return nil, ErrItemNotFound
		}
		return nil, ErrInsufficientStock
	}
	return &AdjustmentResult{
		ItemID:            item.ID,
		ItemName:          item.ItemName,
		PreviousQuantity:  item.Quantity - delta,
		Adjustment:        delta,
		NewQuantity:       item.Quantity,
		BelowReorderLevel: item.BelowReorderLevel(),
	}, nil
}

// CategoryView aggregates one category's items.
func (s *Service) CategoryView(ctx context.Context, category string) (*CategoryView, error) {
	items, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}
	view := &CategoryView{Category: category, TotalItems: len(items), Items: items}
	for _, item := range items {
		view.TotalQuantity += item.Quantity
	}
	return view, nil
}

func (s *Service) LowStock(ctx context.Context) ([]*Item, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}
	return items, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
