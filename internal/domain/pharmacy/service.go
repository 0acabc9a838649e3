package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/medrecord"
)

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrAlreadyDispensed     = errors.New("already dispensed")
	ErrItemNotFound         = errors.New("inventory item not found")
)

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo   Repository
	tx     TxRunner
	logger zerolog.Logger
}

func NewService(repo Repository, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tx: tx, logger: logger}
}

// Dispense hands out one unit of stock per prescription line that references
// an inventory item, then flips the record to Dispensed. Everything runs in
// one transaction with each touched inventory row locked, so two pharmacists
// dispensing the same drug serialize instead of double-spending stock. Lines
// without an inventory reference are drugs sourced outside the hospital and
// are skipped.
func (s *Service) Dispense(ctx context.Context, callerID uuid.UUID, recordID string) (*DispenseResult, error) {
	if recordID == "" {
		return nil, fmt.Errorf("record_id is required")
	}
	result := &DispenseResult{
		Dispensed:      []DispensedItem{},
		LowStockAlerts: []LowStockAlert{},
	}
	err := s.tx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetPrescription(ctx, recordID)
		if err != nil {
			return ErrPrescriptionNotFound
		}
		if p.Status == medrecord.StatusDispensed {
			return ErrAlreadyDispensed
		}
		for _, line := range p.Lines {
			if line.InventoryItemID == nil {
				continue
			}
			item, found, err := s.repo.LockItem(ctx, *line.InventoryItemID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", ErrItemNotFound, line.InventoryItemID)
			}
			if item.Quantity < 1 {
				return fmt.Errorf("insufficient stock for %s. available: %d", item.ItemName, item.Quantity)
			}
			remaining, err := s.repo.DeductItem(ctx, item.ID, 1)
			if err != nil {
				return err
			}
			result.Dispensed = append(result.Dispensed, DispensedItem{
				InventoryItemID: item.ID,
				ItemName:        item.ItemName,
				Quantity:        1,
				RemainingStock:  remaining,
			})
			if remaining <= item.ReorderLevel {
				result.LowStockAlerts = append(result.LowStockAlerts, LowStockAlert{
					InventoryItemID: item.ID,
					ItemName:        item.ItemName,
					Quantity:        remaining,
					ReorderLevel:    item.ReorderLevel,
				})
				s.logger.Warn().Str("item", item.ItemName).Int("quantity", remaining).
					Msg("stock at or below reorder level")
			}
		}
		return s.repo.SetRecordStatus(ctx, recordID, medrecord.StatusDispensed)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("record", recordID).Str("pharmacist", callerID.String()).
		Int("items", len(result.Dispensed)).Msg("prescription dispensed")
	result.Message = "drugs dispensed successfully"
	return result, nil
}

func (s *Service) ListPending(ctx context.Context) ([]*PendingPrescription, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		pending = []*PendingPrescription{}
	}
	return pending, nil
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	return s.repo.Dashboard(ctx)
}
