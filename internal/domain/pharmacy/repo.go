package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads prescriptions out of the medical-record store and mutates
// inventory rows. LockItem takes a row lock, so callers must run it inside a
// transaction and follow it with DeductItem before committing.
type Repository interface {
	GetPrescription(ctx context.Context, recordID string) (*Prescription, error)
	SetRecordStatus(ctx context.Context, recordID, status string) error
	LockItem(ctx context.Context, id uuid.UUID) (*StockLine, bool, error)
	DeductItem(ctx context.Context, id uuid.UUID, qty int) (int, error)
	ListPending(ctx context.Context) ([]*PendingPrescription, error)
	Dashboard(ctx context.Context) (*DashboardSummary, error)
}
