package scheduling

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repository --

type doctorRow struct {
	name string
	from *string
	to   *string
}

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
	patients     map[uuid.UUID]string
	doctors      map[uuid.UUID]*doctorRow
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{
		appointments: make(map[uuid.UUID]*Appointment),
		patients:     make(map[uuid.UUID]string),
		doctors:      make(map[uuid.UUID]*doctorRow),
	}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockAppointmentRepo) GetDetails(_ context.Context, id uuid.UUID) (*AppointmentDetails, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	d := &AppointmentDetails{
		ID:              a.ID,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		Status:          a.Status,
		Notes:           a.Notes,
		Patient:         PatientInfo{ID: a.PatientID, Name: m.patients[a.PatientID]},
		Doctor:          DoctorInfo{ID: a.DoctorID},
	}
	if doc, ok := m.doctors[a.DoctorID]; ok {
		d.Doctor.Name = doc.name
	}
	return d, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	a.UpdatedAt = time.Now()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.appointments, id)
	return nil
}

func (m *mockAppointmentRepo) collect(match func(*Appointment) bool, limit, offset int) ([]*Appointment, int, error) {
	var all []*Appointment
	for _, a := range m.appointments {
		if match(a) {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].AppointmentDate+all[i].AppointmentTime > all[j].AppointmentDate+all[j].AppointmentTime
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockAppointmentRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	return m.collect(func(*Appointment) bool { return true }, limit, offset)
}

func (m *mockAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return m.collect(func(a *Appointment) bool { return a.DoctorID == doctorID }, limit, offset)
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return m.collect(func(a *Appointment) bool { return a.PatientID == patientID }, limit, offset)
}

func (m *mockAppointmentRepo) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.patients[id]
	return ok, nil
}

func (m *mockAppointmentRepo) LockDoctorWindow(_ context.Context, doctorID uuid.UUID) (*string, *string, error) {
	d, ok := m.doctors[doctorID]
	if !ok {
		return nil, nil, fmt.Errorf("not found")
	}
	return d.from, d.to, nil
}

func (m *mockAppointmentRepo) ExistsActive(_ context.Context, doctorID uuid.UUID, date, clock string, exclude uuid.UUID) (bool, error) {
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.AppointmentDate == date && a.AppointmentTime == clock &&
			a.Status != StatusCancelled && a.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

type mockResolver struct {
	profiles map[uuid.UUID]uuid.UUID
}

func (m *mockResolver) ResolveOwnProfile(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := m.profiles[userID]
	if !ok {
		return uuid.Nil, fmt.Errorf("no linked profile")
	}
	return id, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(enforceWindow bool) (*Service, *mockAppointmentRepo, *mockResolver, *mockResolver) {
	repo := newMockAppointmentRepo()
	patients := &mockResolver{profiles: make(map[uuid.UUID]uuid.UUID)}
	doctors := &mockResolver{profiles: make(map[uuid.UUID]uuid.UUID)}
	return NewService(repo, patients, doctors, passthroughTx, enforceWindow), repo, patients, doctors
}

func strPtr(s string) *string { return &s }

func seedWorld(repo *mockAppointmentRepo) (patientID, doctorID uuid.UUID) {
	patientID = uuid.New()
	doctorID = uuid.New()
	repo.patients[patientID] = "Jane Roe"
	repo.doctors[doctorID] = &doctorRow{name: "Dr. Bob Reyes"}
	return patientID, doctorID
}

func book(t *testing.T, svc *Service, patientID, doctorID uuid.UUID, date, clock string) *Appointment {
	t.Helper()
	a, err := svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: date,
		AppointmentTime: clock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

// -- Create --

func TestCreateAppointment(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)

	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	if a.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if a.Status != StatusPending {
		t.Errorf("expected status Pending, got %s", a.Status)
	}
	if len(repo.appointments) != 1 {
		t.Errorf("expected 1 stored appointment, got %d", len(repo.appointments))
	}
}

func TestCreateAppointment_MissingFields(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)

	_, err := svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID: patientID,
		DoctorID:  doctorID,
	})
	if err == nil {
		t.Error("expected error for missing date and time")
	}
}

func TestCreateAppointment_BadDateFormat(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)

	_, err := svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: "10/03/2025",
		AppointmentTime: "10:30",
	})
	if err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	_, doctorID := seedWorld(repo)

	_, err := svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID:       uuid.New(),
		DoctorID:        doctorID,
		AppointmentDate: "2025-03-10",
		AppointmentTime: "10:30",
	})
	if err != ErrPatientNotFound {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestCreateAppointment_UnknownDoctor(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, _ := seedWorld(repo)

	_, err := svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID:       patientID,
		DoctorID:        uuid.New(),
		AppointmentDate: "2025-03-10",
		AppointmentTime: "10:30",
	})
	if err != ErrDoctorNotFound {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCreateAppointment_SlotTaken(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	otherPatient := uuid.New()
	repo.patients[otherPatient] = "John Moe"
	_, err := svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID:       otherPatient,
		DoctorID:        doctorID,
		AppointmentDate: "2025-03-10",
		AppointmentTime: "10:30",
	})
	if err != ErrSlotTaken {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
}

func TestCreateAppointment_OtherSlotFree(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	book(t, svc, patientID, doctorID, "2025-03-10", "11:00")
	if len(repo.appointments) != 2 {
		t.Errorf("expected 2 stored appointments, got %d", len(repo.appointments))
	}
}

func TestCreateAppointment_CancelledSlotRebooked(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	first := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	repo.appointments[first.ID].Status = StatusCancelled

	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	if len(repo.appointments) != 2 {
		t.Errorf("expected 2 stored appointments, got %d", len(repo.appointments))
	}
}

// -- Availability window --

func TestCreateAppointment_OutsideAvailability(t *testing.T) {
	svc, repo, _, _ := newTestService(true)
	patientID, doctorID := seedWorld(repo)
	repo.doctors[doctorID].from = strPtr("09:00")
	repo.doctors[doctorID].to = strPtr("17:00")

	_, err := svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: "2025-03-10",
		AppointmentTime: "18:00",
	})
	if err == nil {
		t.Error("expected error for booking outside the window")
	}

	// The window is half-open: the end bound itself is out.
	_, err = svc.Create(context.Background(), &CreateAppointmentRequest{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: "2025-03-10",
		AppointmentTime: "17:00",
	})
	if err == nil {
		t.Error("expected error for booking at the window end")
	}
}

func TestCreateAppointment_InsideAvailability(t *testing.T) {
	svc, repo, _, _ := newTestService(true)
	patientID, doctorID := seedWorld(repo)
	repo.doctors[doctorID].from = strPtr("09:00")
	repo.doctors[doctorID].to = strPtr("17:00")

	book(t, svc, patientID, doctorID, "2025-03-10", "09:00")
	book(t, svc, patientID, doctorID, "2025-03-10", "16:30")
}

func TestCreateAppointment_NoWindowSet(t *testing.T) {
	svc, repo, _, _ := newTestService(true)
	patientID, doctorID := seedWorld(repo)

	book(t, svc, patientID, doctorID, "2025-03-10", "03:00")
}

func TestCreateAppointment_WindowIgnoredWhenDisabled(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	repo.doctors[doctorID].from = strPtr("09:00")
	repo.doctors[doctorID].to = strPtr("17:00")

	book(t, svc, patientID, doctorID, "2025-03-10", "18:00")
}

// -- Get --

func TestGetAppointment(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AppointmentTime != "10:30" {
		t.Errorf("expected time 10:30, got %s", got.AppointmentTime)
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(false)

	_, err := svc.Get(context.Background(), uuid.New())
	if err != ErrAppointmentNotFound {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestGetAppointmentDetails(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	d, err := svc.GetDetails(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Patient.Name != "Jane Roe" {
		t.Errorf("expected patient name in details, got %q", d.Patient.Name)
	}
	if d.Doctor.Name != "Dr. Bob Reyes" {
		t.Errorf("expected doctor name in details, got %q", d.Doctor.Name)
	}
}

// -- Update --

func TestUpdateAppointment(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	updated, err := svc.Update(context.Background(), a.ID, &UpdateAppointmentRequest{
		Status: strPtr(StatusCompleted),
		Notes:  strPtr("follow-up in two weeks"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected status Completed, got %s", updated.Status)
	}
	if updated.AppointmentTime != "10:30" {
		t.Errorf("expected time untouched, got %s", updated.AppointmentTime)
	}
}

func TestUpdateAppointment_EmptyPayload(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	_, err := svc.Update(context.Background(), a.ID, &UpdateAppointmentRequest{})
	if err != ErrNoFields {
		t.Errorf("expected ErrNoFields, got %v", err)
	}
}

func TestUpdateAppointment_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(false)

	_, err := svc.Update(context.Background(), uuid.New(), &UpdateAppointmentRequest{Status: strPtr(StatusCompleted)})
	if err != ErrAppointmentNotFound {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestUpdateAppointment_MoveToTakenSlot(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	second := book(t, svc, patientID, doctorID, "2025-03-10", "11:00")

	_, err := svc.Update(context.Background(), second.ID, &UpdateAppointmentRequest{
		AppointmentTime: strPtr("10:30"),
	})
	if err != ErrSlotTaken {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
}

func TestUpdateAppointment_MoveToFreeSlot(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	updated, err := svc.Update(context.Background(), a.ID, &UpdateAppointmentRequest{
		AppointmentDate: strPtr("2025-03-11"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.AppointmentDate != "2025-03-11" {
		t.Errorf("expected date moved, got %s", updated.AppointmentDate)
	}
}

func TestUpdateAppointment_KeepingSlotIsNotAConflict(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	// Re-sending the current date and time must not collide with itself.
	_, err := svc.Update(context.Background(), a.ID, &UpdateAppointmentRequest{
		AppointmentDate: strPtr("2025-03-10"),
		AppointmentTime: strPtr("10:30"),
		Status:          strPtr(StatusCompleted),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// -- Delete --

func TestDeleteAppointment(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	if err := svc.Delete(context.Background(), a.ID, uuid.New(), auth.RoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.appointments) != 0 {
		t.Error("expected appointment to be removed")
	}
}

func TestDeleteAppointment_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(false)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New(), auth.RoleAdmin)
	if err != ErrAppointmentNotFound {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestDeleteAppointment_PatientOwn(t *testing.T) {
	svc, repo, patients, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	uid := uuid.New()
	patients.profiles[uid] = patientID

	if err := svc.Delete(context.Background(), a.ID, uid, auth.RolePatient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteAppointment_PatientForeign(t *testing.T) {
	svc, repo, patients, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	a := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	uid := uuid.New()
	patients.profiles[uid] = uuid.New()

	err := svc.Delete(context.Background(), a.ID, uid, auth.RolePatient)
	if err != ErrNotOwnAppointment {
		t.Errorf("expected ErrNotOwnAppointment, got %v", err)
	}
	if len(repo.appointments) != 1 {
		t.Error("expected appointment to survive")
	}
}

// -- Role-scoped listing --

func TestListAppointments_AdminSeesAll(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	otherPatient := uuid.New()
	repo.patients[otherPatient] = "John Moe"
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	book(t, svc, otherPatient, doctorID, "2025-03-11", "09:00")

	items, total, err := svc.List(context.Background(), uuid.New(), auth.RoleAdmin, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 appointments, got total=%d len=%d", total, len(items))
	}
}

func TestListAppointments_PatientSeesOwn(t *testing.T) {
	svc, repo, patients, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	otherPatient := uuid.New()
	repo.patients[otherPatient] = "John Moe"
	mine := book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	book(t, svc, otherPatient, doctorID, "2025-03-11", "09:00")
	uid := uuid.New()
	patients.profiles[uid] = patientID

	items, total, err := svc.List(context.Background(), uid, auth.RolePatient, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 appointment, got total=%d len=%d", total, len(items))
	}
	if items[0].ID != mine.ID {
		t.Error("expected only the caller's own appointment")
	}
}

func TestListAppointments_DoctorSeesOwn(t *testing.T) {
	svc, repo, _, doctors := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	otherDoctor := uuid.New()
	repo.doctors[otherDoctor] = &doctorRow{name: "Dr. Eve Stone"}
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	book(t, svc, patientID, otherDoctor, "2025-03-10", "10:30")
	uid := uuid.New()
	doctors.profiles[uid] = doctorID

	items, total, err := svc.List(context.Background(), uid, auth.RoleDoctor, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 appointment, got total=%d len=%d", total, len(items))
	}
	if items[0].DoctorID != doctorID {
		t.Error("expected only the caller's own appointments")
	}
}

func TestListAppointments_NoLinkedProfile(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	items, total, err := svc.List(context.Background(), uuid.New(), auth.RolePatient, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected empty result, got total=%d len=%d", total, len(items))
	}
}

func TestListAppointments_OrderedNewestFirst(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	book(t, svc, patientID, doctorID, "2025-03-12", "09:00")
	book(t, svc, patientID, doctorID, "2025-03-11", "14:00")

	items, _, err := svc.List(context.Background(), uuid.New(), auth.RoleAdmin, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].AppointmentDate != "2025-03-12" || items[2].AppointmentDate != "2025-03-10" {
		t.Error("expected newest appointment first")
	}
}

// -- Per-doctor listing --

func TestListByDoctor_Admin(t *testing.T) {
	svc, repo, _, _ := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")

	items, total, err := svc.ListByDoctor(context.Background(), doctorID, uuid.New(), auth.RoleAdmin, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 appointment, got total=%d len=%d", total, len(items))
	}
}

func TestListByDoctor_DoctorSelf(t *testing.T) {
	svc, repo, _, doctors := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	uid := uuid.New()
	doctors.profiles[uid] = doctorID

	_, _, err := svc.ListByDoctor(context.Background(), doctorID, uid, auth.RoleDoctor, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListByDoctor_DoctorForeign(t *testing.T) {
	svc, repo, _, doctors := newTestService(false)
	patientID, doctorID := seedWorld(repo)
	book(t, svc, patientID, doctorID, "2025-03-10", "10:30")
	uid := uuid.New()
	doctors.profiles[uid] = uuid.New()

	_, _, err := svc.ListByDoctor(context.Background(), doctorID, uid, auth.RoleDoctor, 20, 0)
	if err != ErrForeignAppointments {
		t.Errorf("expected ErrForeignAppointments, got %v", err)
	}
}
