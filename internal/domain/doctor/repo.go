package doctor

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage operations for doctors.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	ListAppointments(ctx context.Context, doctorID uuid.UUID) ([]AppointmentSummary, error)
	LinkUser(ctx context.Context, fullName, email string, userID uuid.UUID) (bool, error)
}
