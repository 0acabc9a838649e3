package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage operations for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	ListAppointments(ctx context.Context, patientID uuid.UUID) ([]AppointmentSummary, error)
	LinkUser(ctx context.Context, fullName, email string, userID uuid.UUID) (bool, error)
}
