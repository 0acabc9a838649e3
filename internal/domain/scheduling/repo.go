package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage operations for appointments. The booking
// helpers (LockDoctorWindow, ExistsActive) run inside the caller's
// transaction so the conflict probe and the insert cannot interleave.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*AppointmentDetails, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	LockDoctorWindow(ctx context.Context, doctorID uuid.UUID) (from, to *string, err error)
	ExistsActive(ctx context.Context, doctorID uuid.UUID, date, clock string, exclude uuid.UUID) (bool, error)
}
