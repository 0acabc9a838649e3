package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/auth"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*identity.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *identity.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("no rows in result set")
}

func TestUserDirectory_RoleOf(t *testing.T) {
	id := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*identity.User{
		id: {ID: id, Email: "nurse@hospital.test", Role: auth.RoleNurse},
	}}
	dir := &userDirectory{users: repo}

	role, err := dir.RoleOf(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != auth.RoleNurse {
		t.Errorf("expected %s, got %s", auth.RoleNurse, role)
	}
}

func TestUserDirectory_RoleOf_UnknownUser(t *testing.T) {
	repo := &fakeUserRepo{users: map[uuid.UUID]*identity.User{}}
	dir := &userDirectory{users: repo}

	if _, err := dir.RoleOf(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
