package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrNoFields          = errors.New("no fields to update")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserNotDoctorRole = errors.New("user must have the Doctor role")
	ErrNotOwnProfile     = errors.New("you can only update your own profile")
	ErrNotOwnSchedule    = errors.New("you can only update your own schedule")
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

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func (s *Service) Create(ctx context.Context, d *Doctor) (*Doctor, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if d.AvailableFrom != nil && !validClock(*d.AvailableFrom) {
		return nil, fmt.Errorf("available_from must be HH:MM")
	}
	if d.AvailableTo != nil && !validClock(*d.AvailableTo) {
		return nil, fmt.Errorf("available_to must be HH:MM")
	}
	if d.UserID != nil {
		role, err := s.users.RoleOf(ctx, *d.UserID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		if role != auth.RoleDoctor {
			return nil, ErrUserNotDoctorRole
		}
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// isOwnProfile reports whether the caller's linked doctor profile is the
// target row. It is the single ownership predicate for this store.
func (s *Service) isOwnProfile(ctx context.Context, callerID, doctorID uuid.UUID) bool {
	d, err := s.repo.GetByUserID(ctx, callerID)
	return err == nil && d.ID == doctorID
}

// Update applies the non-nil fields of req. A caller with the Doctor role
// may only touch their own profile.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateDoctorRequest, callerID uuid.UUID, callerRole string) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	if callerRole == auth.RoleDoctor && !s.isOwnProfile(ctx, callerID, id) {
		return nil, ErrNotOwnProfile
	}
	if req.empty() {
		return nil, ErrNoFields
	}
	if req.AvailableFrom != nil && !validClock(*req.AvailableFrom) {
		return nil, fmt.Errorf("available_from must be HH:MM")
	}
	if req.AvailableTo != nil && !validClock(*req.AvailableTo) {
		return nil, fmt.Errorf("available_to must be HH:MM")
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Specialty != nil {
		d.Specialty = req.Specialty
	}
	if req.Phone != nil {
		d.Phone = req.Phone
	}
	if req.Email != nil {
		d.Email = req.Email
	}
	if req.AvailableFrom != nil {
		d.AvailableFrom = req.AvailableFrom
	}
	if req.AvailableTo != nil {
		d.AvailableTo = req.AvailableTo
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrDoctorNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetSchedule(ctx context.Context, id uuid.UUID) (*ScheduleView, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	return &ScheduleView{
		DoctorID:      d.ID,
		DoctorName:    d.Name,
		AvailableFrom: d.AvailableFrom,
		AvailableTo:   d.AvailableTo,
	}, nil
}

// SetSchedule replaces both bounds of the availability window. A caller
// with the Doctor role may only touch their own schedule.
func (s *Service) SetSchedule(ctx context.Context, id uuid.UUID, req *ScheduleRequest, callerID uuid.UUID, callerRole string) (*ScheduleView, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	if callerRole == auth.RoleDoctor && !s.isOwnProfile(ctx, callerID, id) {
		return nil, ErrNotOwnSchedule
	}
	if req.AvailableFrom != nil && !validClock(*req.AvailableFrom) {
		return nil, fmt.Errorf("available_from must be HH:MM")
	}
	if req.AvailableTo != nil && !validClock(*req.AvailableTo) {
		return nil, fmt.Errorf("available_to must be HH:MM")
	}
	d.AvailableFrom = req.AvailableFrom
	d.AvailableTo = req.AvailableTo
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return &ScheduleView{
		DoctorID:      d.ID,
		DoctorName:    d.Name,
		AvailableFrom: d.AvailableFrom,
		AvailableTo:   d.AvailableTo,
	}, nil
}

func (s *Service) Appointments(ctx context.Context, id uuid.UUID) (*DoctorAppointments, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	appts, err := s.repo.ListAppointments(ctx, id)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []AppointmentSummary{}
	}
	return &DoctorAppointments{DoctorID: d.ID, DoctorName: d.Name, Appointments: appts}, nil
}

// ResolveOwnProfile returns the id of the doctor profile linked to the
// given user account.
func (s *Service) ResolveOwnProfile(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, ErrDoctorNotFound
	}
	return d.ID, nil
}

// LinkUser exposes the registration back-fill on the service so the
// identity store can claim profiles without reaching into the repository.
func (s *Service) LinkUser(ctx context.Context, fullName, email string, userID uuid.UUID) (bool, error) {
	return s.repo.LinkUser(ctx, fullName, email, userID)
}
