package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/medrecord"
)

// -- Mock Repository --

type recordRow struct {
	status      string
	lines       []medrecord.PrescriptionItem
	patientName string
	doctorName  string
	dateIssued  time.Time
}

type stockRow struct {
	name         string
	quantity     int
	reorderLevel int
}

type mockPharmacyRepo struct {
	records map[string]*recordRow
	stock   map[uuid.UUID]*stockRow
}

func newMockPharmacyRepo() *mockPharmacyRepo {
	return &mockPharmacyRepo{
		records: make(map[string]*recordRow),
		stock:   make(map[uuid.UUID]*stockRow),
	}
}

func (m *mockPharmacyRepo) GetPrescription(_ context.Context, recordID string) (*Prescription, error) {
	row, ok := m.records[recordID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return &Prescription{RecordID: recordID, Status: row.status, Lines: row.lines}, nil
}

func (m *mockPharmacyRepo) SetRecordStatus(_ context.Context, recordID, status string) error {
	row, ok := m.records[recordID]
	if !ok {
		return fmt.Errorf("not found")
	}
	row.status = status
	return nil
}

func (m *mockPharmacyRepo) LockItem(_ context.Context, id uuid.UUID) (*StockLine, bool, error) {
	s, ok := m.stock[id]
	if !ok {
		return nil, false, nil
	}
	return &StockLine{ID: id, ItemName: s.name, Quantity: s.quantity, ReorderLevel: s.reorderLevel}, true, nil
}

func (m *mockPharmacyRepo) DeductItem(_ context.Context, id uuid.UUID, qty int) (int, error) {
	s, ok := m.stock[id]
	if !ok {
		return 0, fmt.Errorf("not found")
	}
	s.quantity -= qty
	return s.quantity, nil
}

func (m *mockPharmacyRepo) ListPending(_ context.Context) ([]*PendingPrescription, error) {
	var pending []*PendingPrescription
	for recordID, row := range m.records {
		if row.status != medrecord.StatusPending || len(row.lines) == 0 {
			continue
		}
		pending = append(pending, &PendingPrescription{
			PrescriptionID: recordID,
			PatientName:    row.patientName,
			DoctorName:     row.doctorName,
			Drugs:          row.lines,
			DateIssued:     row.dateIssued,
		})
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].DateIssued.Before(pending[j].DateIssued) })
	return pending, nil
}

func (m *mockPharmacyRepo) Dashboard(_ context.Context) (*DashboardSummary, error) {
	var d DashboardSummary
	for _, s := range m.stock {
		d.TotalItems++
		if s.quantity <= s.reorderLevel {
			d.LowStockCount++
		}
	}
	for _, row := range m.records {
		if row.status == medrecord.StatusPending {
			d.PendingPrescriptions++
		}
	}
	return &d, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockPharmacyRepo) {
	repo := newMockPharmacyRepo()
	return NewService(repo, passthroughTx, zerolog.Nop()), repo
}

func strPtr(s string) *string { return &s }

func seedStock(repo *mockPharmacyRepo, name string, quantity, reorderLevel int) uuid.UUID {
	id := uuid.New()
	repo.stock[id] = &stockRow{name: name, quantity: quantity, reorderLevel: reorderLevel}
	return id
}

func seedRecord(repo *mockPharmacyRepo, recordID, status string, lines ...medrecord.PrescriptionItem) {
	repo.records[recordID] = &recordRow{
		status:      status,
		lines:       lines,
		patientName: "Jane Roe",
		doctorName:  "Dr. Bob Reyes",
		dateIssued:  time.Unix(int64(len(repo.records)+1)*60, 0),
	}
}

// -- Dispense --

func TestDispense(t *testing.T) {
	svc, repo := newTestService()
	itemID := seedStock(repo, "Paracetamol 500mg", 10, 3)
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &itemID, Dosage: strPtr("500mg")},
		medrecord.PrescriptionItem{DrugName: strPtr("Herbal tea")},
	)

	result, err := svc.Dispense(context.Background(), uuid.New(), "REC001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message == "" {
		t.Error("expected a confirmation message")
	}
	if len(result.Dispensed) != 1 {
		t.Fatalf("expected 1 dispensed item, got %d", len(result.Dispensed))
	}
	if result.Dispensed[0].RemainingStock != 9 {
		t.Errorf("expected 9 remaining, got %d", result.Dispensed[0].RemainingStock)
	}
	if len(result.LowStockAlerts) != 0 {
		t.Errorf("expected no low stock alerts, got %d", len(result.LowStockAlerts))
	}
	if repo.stock[itemID].quantity != 9 {
		t.Errorf("expected stock 9, got %d", repo.stock[itemID].quantity)
	}
	if repo.records["REC001"].status != medrecord.StatusDispensed {
		t.Errorf("expected record Dispensed, got %s", repo.records["REC001"].status)
	}
}

func TestDispense_MissingRecordID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Dispense(context.Background(), uuid.New(), "")
	if err == nil {
		t.Fatal("expected error for missing record_id")
	}
}

func TestDispense_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Dispense(context.Background(), uuid.New(), "REC999")
	if err != ErrPrescriptionNotFound {
		t.Errorf("expected ErrPrescriptionNotFound, got %v", err)
	}
}

func TestDispense_AlreadyDispensed(t *testing.T) {
	svc, repo := newTestService()
	itemID := seedStock(repo, "Paracetamol 500mg", 10, 3)
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &itemID})

	if _, err := svc.Dispense(context.Background(), uuid.New(), "REC001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Dispense(context.Background(), uuid.New(), "REC001")
	if err != ErrAlreadyDispensed {
		t.Errorf("expected ErrAlreadyDispensed, got %v", err)
	}
	if repo.stock[itemID].quantity != 9 {
		t.Errorf("expected stock unchanged at 9, got %d", repo.stock[itemID].quantity)
	}
}

func TestDispense_UnknownItem(t *testing.T) {
	svc, repo := newTestService()
	missing := uuid.New()
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &missing})

	_, err := svc.Dispense(context.Background(), uuid.New(), "REC001")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), missing.String()) {
		t.Errorf("expected error naming the missing item, got %v", err)
	}
}

func TestDispense_InsufficientStock(t *testing.T) {
	svc, repo := newTestService()
	itemID := seedStock(repo, "Amoxicillin 250mg", 0, 5)
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &itemID})

	_, err := svc.Dispense(context.Background(), uuid.New(), "REC001")
	if err == nil || !strings.Contains(err.Error(), "insufficient stock for Amoxicillin 250mg") {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if repo.records["REC001"].status != medrecord.StatusPending {
		t.Error("expected record to stay Pending")
	}
}

func TestDispense_LowStockAlert(t *testing.T) {
	svc, repo := newTestService()
	itemID := seedStock(repo, "Insulin pen", 4, 5)
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &itemID})

	result, err := svc.Dispense(context.Background(), uuid.New(), "REC001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.LowStockAlerts) != 1 {
		t.Fatalf("expected 1 low stock alert, got %d", len(result.LowStockAlerts))
	}
	if result.LowStockAlerts[0].Quantity != 3 {
		t.Errorf("expected alert quantity 3, got %d", result.LowStockAlerts[0].Quantity)
	}
}

func TestDispense_TwoLinesSameItem(t *testing.T) {
	svc, repo := newTestService()
	itemID := seedStock(repo, "Paracetamol 500mg", 2, 0)
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &itemID, Dosage: strPtr("500mg")},
		medrecord.PrescriptionItem{InventoryItemID: &itemID, Dosage: strPtr("250mg")},
	)

	result, err := svc.Dispense(context.Background(), uuid.New(), "REC001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Dispensed) != 2 {
		t.Fatalf("expected 2 dispensed items, got %d", len(result.Dispensed))
	}
	if repo.stock[itemID].quantity != 0 {
		t.Errorf("expected stock 0, got %d", repo.stock[itemID].quantity)
	}
	if len(result.LowStockAlerts) != 1 {
		t.Errorf("expected 1 low stock alert, got %d", len(result.LowStockAlerts))
	}
}

func TestDispense_FreeTextOnly(t *testing.T) {
	svc, repo := newTestService()
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{DrugName: strPtr("Herbal tea")})

	result, err := svc.Dispense(context.Background(), uuid.New(), "REC001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Dispensed) != 0 {
		t.Errorf("expected nothing dispensed, got %d", len(result.Dispensed))
	}
	if repo.records["REC001"].status != medrecord.StatusDispensed {
		t.Error("expected record Dispensed")
	}
}

// -- Pending / Dashboard --

func TestListPending(t *testing.T) {
	svc, repo := newTestService()
	itemID := seedStock(repo, "Paracetamol 500mg", 10, 3)
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &itemID})
	seedRecord(repo, "REC002", medrecord.StatusDispensed,
		medrecord.PrescriptionItem{InventoryItemID: &itemID})
	seedRecord(repo, "REC003", medrecord.StatusPending)

	pending, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending prescription, got %d", len(pending))
	}
	if pending[0].PrescriptionID != "REC001" {
		t.Errorf("expected REC001, got %s", pending[0].PrescriptionID)
	}
	if pending[0].PatientName != "Jane Roe" || pending[0].DoctorName != "Dr. Bob Reyes" {
		t.Error("expected joined patient and doctor names")
	}
}

func TestListPending_Empty(t *testing.T) {
	svc, _ := newTestService()

	pending, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending == nil || len(pending) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", pending)
	}
}

func TestDashboard(t *testing.T) {
	svc, repo := newTestService()
	seedStock(repo, "Paracetamol 500mg", 50, 10)
	seedStock(repo, "Insulin pen", 2, 5)
	itemID := seedStock(repo, "Bandages", 100, 20)
	seedRecord(repo, "REC001", medrecord.StatusPending,
		medrecord.PrescriptionItem{InventoryItemID: &itemID})
	seedRecord(repo, "REC002", medrecord.StatusDispensed,
		medrecord.PrescriptionItem{InventoryItemID: &itemID})
	seedRecord(repo, "REC003", medrecord.StatusPending)

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", d.TotalItems)
	}
	if d.LowStockCount != 1 {
		t.Errorf("expected 1 low stock item, got %d", d.LowStockCount)
	}
	if d.PendingPrescriptions != 2 {
		t.Errorf("expected 2 pending prescriptions, got %d", d.PendingPrescriptions)
	}
}
