package billing

import (
	"context"

	"github.com/google/uuid"
)

type BillRepository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*BillDetails, error)
	Update(ctx context.Context, b *Bill) error
	List(ctx context.Context, limit, offset int) ([]*Bill, int, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Bill, error)
	ListByInsurance(ctx context.Context, insuranceID uuid.UUID) ([]*Bill, error)
	AppointmentExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type InsuranceRepository interface {
	Create(ctx context.Context, ins *Insurance) error
	GetByID(ctx context.Context, id uuid.UUID) (*Insurance, error)
	List(ctx context.Context, limit, offset int) ([]*Insurance, int, error)
}
