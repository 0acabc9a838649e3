package pharmacy

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/medrecord"
)

// Prescription is the dispensable view of a medical record: its code, its
// status, and the prescription lines written by the doctor.
type Prescription struct {
	RecordID string
	Status   string
	Lines    []medrecord.PrescriptionItem
}

// StockLine is the slice of an inventory row the dispensing flow needs.
type StockLine struct {
	ID           uuid.UUID
	ItemName     string
	Quantity     int
	ReorderLevel int
}

type DispenseRequest struct {
	RecordID string `json:"record_id"`
}

// DispensedItem reports one inventory deduction made while dispensing.
type DispensedItem struct {
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ItemName        string    `json:"item_name"`
	Quantity        int       `json:"quantity"`
	RemainingStock  int       `json:"remaining_stock"`
}

// LowStockAlert flags an item that fell to or below its reorder level during
// dispensing.
type LowStockAlert struct {
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ItemName        string    `json:"item_name"`
	Quantity        int       `json:"quantity"`
	ReorderLevel    int       `json:"reorder_level"`
}

type DispenseResult struct {
	Message        string          `json:"message"`
	Dispensed      []DispensedItem `json:"dispensed"`
	LowStockAlerts []LowStockAlert `json:"low_stock_alerts"`
}

// PendingPrescription is a record awaiting dispensing, joined with the names
// a pharmacist needs to hand the drugs to the right person.
type PendingPrescription struct {
	PrescriptionID string                       `json:"prescription_id"`
	PatientName    string                       `json:"patient_name"`
	DoctorName     string                       `json:"doctor_name"`
	Drugs          []medrecord.PrescriptionItem `json:"drugs"`
	DateIssued     time.Time                    `json:"date_issued"`
}

type DashboardSummary struct {
	TotalItems           int `json:"total_items"`
	LowStockCount        int `json:"low_stock_count"`
	PendingPrescriptions int `json:"pending_prescriptions"`
}
