package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

var (
	ErrMissingFields      = errors.New("full_name, email, password, and role are required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNoDoctorProfile    = errors.New("no matching doctor profile found, contact an admin")
	ErrNoPatientProfile   = errors.New("no matching patient profile found, contact an admin")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// ProfileLinker back-fills a profile row's user_id during registration. The
// doctor and patient stores implement it; the bool result reports whether an
// unclaimed profile matched the given name and email.
type ProfileLinker interface {
	LinkUser(ctx context.Context, fullName, email string, userID uuid.UUID) (bool, error)
}

// TxRunner executes fn inside a database transaction. The production
// implementation is db.WithTx bound to the connection pool.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	users    UserRepository
	doctors  ProfileLinker
	patients ProfileLinker
	issuer   *auth.TokenIssuer
	tx       TxRunner
}

func NewService(users UserRepository, doctors, patients ProfileLinker, issuer *auth.TokenIssuer, tx TxRunner) *Service {
	return &Service{users: users, doctors: doctors, patients: patients, issuer: issuer, tx: tx}
}

// Register creates a user account. Doctor and Patient registrations must
// match a profile row provisioned beforehand by an Admin; that row's user_id
// is claimed in the same transaction so a failed match leaves no orphan user.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return nil, ErrMissingFields
	}
	if !auth.ValidRoles[req.Role] {
		return nil, ErrInvalidRole
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
			return ErrEmailTaken
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		switch req.Role {
		case auth.RoleDoctor:
			matched, err := s.doctors.LinkUser(ctx, req.FullName, req.Email, u.ID)
			if err != nil {
				return err
			}
			if !matched {
				return ErrNoDoctorProfile
			}
		case auth.RolePatient:
			matched, err := s.patients.LinkUser(ctx, req.FullName, req.Email, u.ID)
			if err != nil {
				return err
			}
			if !matched {
				return ErrNoPatientProfile
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and issues an access token. The same error
// is returned for an unknown email, a wrong password, and a deactivated
// account so callers cannot probe which addresses are registered.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
