package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrNoFields           = errors.New("no fields to update")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserNotPatientRole = errors.New("user must have the Patient role")
)

// UserDirectory resolves the role of a user account, used to validate an
// explicit user_id on profile creation.
type UserDirectory interface {
	RoleOf(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if p.UserID != nil {
		role, err := s.users.RoleOf(ctx, *p.UserID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		if role != auth.RolePatient {
			return nil, ErrUserNotPatientRole
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies the non-nil fields of req and leaves the rest untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdatePatientRequest) (*Patient, error) {
	if req.empty() {
		return nil, ErrNoFields
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Age != nil {
		p.Age = req.Age
	}
	if req.Gender != nil {
		p.Gender = req.Gender
	}
	if req.Contact != nil {
		p.Contact = req.Contact
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.BloodType != nil {
		p.BloodType = req.BloodType
	}
	if req.MedicalHistory != nil {
		p.MedicalHistory = req.MedicalHistory
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrPatientNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Appointments(ctx context.Context, id uuid.UUID) (*PatientAppointments, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	appts, err := s.repo.ListAppointments(ctx, id)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []AppointmentSummary{}
	}
	return &PatientAppointments{PatientID: p.ID, PatientName: p.Name, Appointments: appts}, nil
}

// ResolveOwnProfile returns the id of the patient profile linked to the
// given user account. Ownership checks compare it to the target resource.
func (s *Service) ResolveOwnProfile(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, ErrPatientNotFound
	}
	return p.ID, nil
}

// LinkUser exposes the registration back-fill on the service so the
// identity store can claim profiles without reaching into the repository.
func (s *Service) LinkUser(ctx context.Context, fullName, email string, userID uuid.UUID) (bool, error) {
	return s.repo.LinkUser(ctx, fullName, email, userID)
}
