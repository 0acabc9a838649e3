package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repository --

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
	appts    map[uuid.UUID][]AppointmentSummary
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{
		patients: make(map[uuid.UUID]*Patient),
		appts:    make(map[uuid.UUID][]AppointmentSummary),
	}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	for _, p := range m.patients {
		if p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockPatientRepo) ListAppointments(_ context.Context, patientID uuid.UUID) ([]AppointmentSummary, error) {
	return m.appts[patientID], nil
}

func (m *mockPatientRepo) LinkUser(_ context.Context, fullName, email string, userID uuid.UUID) (bool, error) {
	for _, p := range m.patients {
		if p.Name == fullName && p.Email != nil && *p.Email == email && p.UserID == nil {
			p.UserID = &userID
			return true, nil
		}
	}
	return false, nil
}

// mockUserDirectory maps user ids to roles.
type mockUserDirectory struct {
	roles map[uuid.UUID]string
}

func (m *mockUserDirectory) RoleOf(_ context.Context, id uuid.UUID) (string, error) {
	role, ok := m.roles[id]
	if !ok {
		return "", fmt.Errorf("not found")
	}
	return role, nil
}

func newTestService() (*Service, *mockPatientRepo, *mockUserDirectory) {
	repo := newMockPatientRepo()
	users := &mockUserDirectory{roles: make(map[uuid.UUID]string)}
	return NewService(repo, users), repo, users
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func seedPatient(t *testing.T, svc *Service) *Patient {
	t.Helper()
	p, err := svc.Create(context.Background(), &Patient{
		Name:      "Carol Diaz",
		Age:       intPtr(34),
		Gender:    strPtr("Female"),
		Email:     strPtr("carol@example.com"),
		BloodType: strPtr("O+"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

// -- Create --

func TestCreatePatient(t *testing.T) {
	svc, repo, _ := newTestService()

	p := seedPatient(t, svc)
	if p.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected 1 stored patient, got %d", len(repo.patients))
	}
}

func TestCreatePatient_MissingName(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &Patient{Age: intPtr(34)})
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCreatePatient_WithUserID(t *testing.T) {
	svc, _, users := newTestService()
	uid := uuid.New()
	users.roles[uid] = auth.RolePatient

	p, err := svc.Create(context.Background(), &Patient{Name: "Carol Diaz", UserID: &uid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID == nil || *p.UserID != uid {
		t.Error("expected user_id to be kept")
	}
}

func TestCreatePatient_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()
	uid := uuid.New()

	_, err := svc.Create(context.Background(), &Patient{Name: "Carol Diaz", UserID: &uid})
	if err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreatePatient_UserRoleMismatch(t *testing.T) {
	svc, _, users := newTestService()
	uid := uuid.New()
	users.roles[uid] = auth.RoleDoctor

	_, err := svc.Create(context.Background(), &Patient{Name: "Carol Diaz", UserID: &uid})
	if err != ErrUserNotPatientRole {
		t.Errorf("expected ErrUserNotPatientRole, got %v", err)
	}
}

// -- Get / List --

func TestGetPatient(t *testing.T) {
	svc, _, _ := newTestService()
	p := seedPatient(t, svc)

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Carol Diaz" {
		t.Errorf("expected name Carol Diaz, got %s", got.Name)
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	if err != ErrPatientNotFound {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestListPatients(t *testing.T) {
	svc, _, _ := newTestService()
	seedPatient(t, svc)

	items, total, err := svc.List(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 patient, got total=%d len=%d", total, len(items))
	}
}

// -- Update --

func TestUpdatePatient_PartialLeavesOtherFields(t *testing.T) {
	svc, _, _ := newTestService()
	p := seedPatient(t, svc)

	updated, err := svc.Update(context.Background(), p.ID, &UpdatePatientRequest{
		Contact: strPtr("555-0101"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Contact == nil || *updated.Contact != "555-0101" {
		t.Error("expected contact to be updated")
	}
	if updated.Name != "Carol Diaz" {
		t.Errorf("expected name untouched, got %s", updated.Name)
	}
	if updated.Age == nil || *updated.Age != 34 {
		t.Error("expected age untouched")
	}
	if updated.BloodType == nil || *updated.BloodType != "O+" {
		t.Error("expected blood_type untouched")
	}
}

func TestUpdatePatient_EmptyPayload(t *testing.T) {
	svc, _, _ := newTestService()
	p := seedPatient(t, svc)

	_, err := svc.Update(context.Background(), p.ID, &UpdatePatientRequest{})
	if err != ErrNoFields {
		t.Errorf("expected ErrNoFields, got %v", err)
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Update(context.Background(), uuid.New(), &UpdatePatientRequest{Name: strPtr("X")})
	if err != ErrPatientNotFound {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

// -- Delete --

func TestDeletePatient(t *testing.T) {
	svc, repo, _ := newTestService()
	p := seedPatient(t, svc)

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.patients) != 0 {
		t.Error("expected patient to be removed")
	}
}

func TestDeletePatient_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Delete(context.Background(), uuid.New()); err != ErrPatientNotFound {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

// -- Appointments view --

func TestPatientAppointments(t *testing.T) {
	svc, repo, _ := newTestService()
	p := seedPatient(t, svc)
	repo.appts[p.ID] = []AppointmentSummary{
		{ID: uuid.New(), DoctorID: uuid.New(), DoctorName: "Dr. Bob Reyes",
			AppointmentDate: "2025-01-01", AppointmentTime: "10:00", Status: "Pending"},
	}

	view, err := svc.Appointments(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.PatientName != "Carol Diaz" {
		t.Errorf("expected patient_name Carol Diaz, got %s", view.PatientName)
	}
	if len(view.Appointments) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(view.Appointments))
	}
}

func TestPatientAppointments_EmptyIsNotNil(t *testing.T) {
	svc, _, _ := newTestService()
	p := seedPatient(t, svc)

	view, err := svc.Appointments(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Appointments == nil {
		t.Error("expected empty slice, got nil")
	}
}

// -- Ownership / linking --

func TestResolveOwnProfile(t *testing.T) {
	svc, repo, _ := newTestService()
	p := seedPatient(t, svc)
	uid := uuid.New()
	repo.patients[p.ID].UserID = &uid

	got, err := svc.ResolveOwnProfile(context.Background(), uid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p.ID {
		t.Errorf("expected profile %s, got %s", p.ID, got)
	}
}

func TestResolveOwnProfile_NoProfile(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ResolveOwnProfile(context.Background(), uuid.New())
	if err != ErrPatientNotFound {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestLinkUser(t *testing.T) {
	svc, repo, _ := newTestService()
	p := seedPatient(t, svc)
	uid := uuid.New()

	matched, err := svc.LinkUser(context.Background(), "Carol Diaz", "carol@example.com", uid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matched {
		t.Fatal("expected profile to match")
	}
	if repo.patients[p.ID].UserID == nil || *repo.patients[p.ID].UserID != uid {
		t.Error("expected user_id to be back-filled")
	}
}

func TestLinkUser_NoMatch(t *testing.T) {
	svc, _, _ := newTestService()
	seedPatient(t, svc)

	matched, err := svc.LinkUser(context.Background(), "Wrong Name", "carol@example.com", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched {
		t.Error("expected no match for wrong name")
	}
}
