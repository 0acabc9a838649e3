package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrSlotTaken           = errors.New("doctor already has an appointment at this time")
	ErrNoFields            = errors.New("no fields to update")
	ErrNotOwnAppointment   = errors.New("you can only cancel your own appointments")
	ErrForeignAppointments = errors.New("not authorized to view these appointments")
)

// ProfileResolver maps an account to its linked profile row. Patient and
// doctor services both satisfy it.
type ProfileResolver interface {
	ResolveOwnProfile(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// TxRunner executes fn inside a transaction carried on the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	patients ProfileResolver
	doctors  ProfileResolver
	tx       TxRunner

	// enforceWindow rejects bookings outside the doctor's availability
	// window when both bounds are set.
	enforceWindow bool
}

func NewService(repo Repository, patients, doctors ProfileResolver, tx TxRunner, enforceWindow bool) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors, tx: tx, enforceWindow: enforceWindow}
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// Create books an appointment. The doctor row is locked for the duration
// of the transaction so two concurrent bookings for the same slot cannot
// both pass the conflict probe.
func (s *Service) Create(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	if req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("patient_id and doctor_id are required")
	}
	if req.AppointmentDate == "" || req.AppointmentTime == "" {
		return nil, fmt.Errorf("appointment_date and appointment_time are required")
	}
	if !validDate(req.AppointmentDate) {
		return nil, fmt.Errorf("appointment_date must be YYYY-MM-DD")
	}
	if !validClock(req.AppointmentTime) {
		return nil, fmt.Errorf("appointment_time must be HH:MM")
	}

	a := &Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Status:          StatusPending,
		Notes:           req.Notes,
	}
	err := s.tx(ctx, func(ctx context.Context) error {
		ok, err := s.repo.PatientExists(ctx, req.PatientID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPatientNotFound
		}
		from, to, err := s.repo.LockDoctorWindow(ctx, req.DoctorID)
		if err != nil {
			return ErrDoctorNotFound
		}
		if s.enforceWindow && from != nil && to != nil {
			if req.AppointmentTime < *from || req.AppointmentTime >= *to {
				return fmt.Errorf("doctor is not available at this time, available: %s - %s", *from, *to)
			}
		}
		taken, err := s.repo.ExistsActive(ctx, req.DoctorID, req.AppointmentDate, req.AppointmentTime, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
		return s.repo.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

func (s *Service) GetDetails(ctx context.Context, id uuid.UUID) (*AppointmentDetails, error) {
	d, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	return d, nil
}

// Update applies a partial update. Moving the appointment to another
// date or time re-runs the conflict probe against the new slot.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateAppointmentRequest) (*Appointment, error) {
	if req.empty() {
		return nil, ErrNoFields
	}
	if req.AppointmentDate != nil && !validDate(*req.AppointmentDate) {
		return nil, fmt.Errorf("appointment_date must be YYYY-MM-DD")
	}
	if req.AppointmentTime != nil && !validClock(*req.AppointmentTime) {
		return nil, fmt.Errorf("appointment_time must be HH:MM")
	}

	var updated *Appointment
	err := s.tx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return ErrAppointmentNotFound
		}
		moved := false
		if req.AppointmentDate != nil && *req.AppointmentDate != a.AppointmentDate {
			a.AppointmentDate = *req.AppointmentDate
			moved = true
		}
		if req.AppointmentTime != nil && *req.AppointmentTime != a.AppointmentTime {
			a.AppointmentTime = *req.AppointmentTime
			moved = true
		}
		if req.Status != nil {
			a.Status = *req.Status
		}
		if req.Notes != nil {
			a.Notes = req.Notes
		}
		if moved && a.Status != StatusCancelled {
			if _, _, err := s.repo.LockDoctorWindow(ctx, a.DoctorID); err != nil {
				return ErrDoctorNotFound
			}
			taken, err := s.repo.ExistsActive(ctx, a.DoctorID, a.AppointmentDate, a.AppointmentTime, a.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotTaken
			}
		}
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete cancels an appointment. Patients may only cancel their own.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrAppointmentNotFound
	}
	if callerRole == auth.RolePatient {
		profileID, err := s.patients.ResolveOwnProfile(ctx, callerID)
		if err != nil || profileID != a.PatientID {
			return ErrNotOwnAppointment
		}
	}
	return s.repo.Delete(ctx, id)
}

// List returns appointments scoped to the caller: patients and doctors
// see their own, everyone else sees all. Callers with no linked profile
// get an empty result rather than an error.
func (s *Service) List(ctx context.Context, callerID uuid.UUID, callerRole string, limit, offset int) ([]*Appointment, int, error) {
	switch callerRole {
	case auth.RolePatient:
		profileID, err := s.patients.ResolveOwnProfile(ctx, callerID)
		if err != nil {
			return []*Appointment{}, 0, nil
		}
		return s.listByPatient(ctx, profileID, limit, offset)
	case auth.RoleDoctor:
		profileID, err := s.doctors.ResolveOwnProfile(ctx, callerID)
		if err != nil {
			return []*Appointment{}, 0, nil
		}
		return s.listByDoctor(ctx, profileID, limit, offset)
	default:
		items, total, err := s.repo.List(ctx, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		if items == nil {
			items = []*Appointment{}
		}
		return items, total, nil
	}
}

// ListByDoctor returns one doctor's appointments. A doctor may only view
// their own list.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, callerID uuid.UUID, callerRole string, limit, offset int) ([]*Appointment, int, error) {
	if callerRole == auth.RoleDoctor {
		profileID, err := s.doctors.ResolveOwnProfile(ctx, callerID)
		if err != nil || profileID != doctorID {
			return nil, 0, ErrForeignAppointments
		}
	}
	return s.listByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) listByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.repo.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return items, total, nil
}

func (s *Service) listByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return items, total, nil
}
