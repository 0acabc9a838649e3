package medrecord

import (
	"time"

	"github.com/google/uuid"
)

// Record status values. Pharmacy flips a record to Dispensed once every
// prescription line has been handed out.
const (
	StatusPending   = "Pending"
	StatusDispensed = "Dispensed"
)

// PrescriptionItem is one line of a prescription. Lines that reference an
// inventory item are resolved at write time; drug_name is filled in from the
// item when the author leaves it blank.
type PrescriptionItem struct {
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty"`
	DrugName        *string    `json:"drug_name,omitempty"`
	Dosage          *string    `json:"dosage,omitempty"`
	Frequency       *string    `json:"frequency,omitempty"`
	Duration        *string    `json:"duration,omitempty"`
}

// VitalSigns captures the measurements taken during the visit. Blood pressure
// and temperature are free text ("120/80", "37.2 C"); respiratory rate is
// breaths per minute.
type VitalSigns struct {
	BloodPressure   *string `json:"blood_pressure,omitempty"`
	Temperature     *string `json:"temperature,omitempty"`
	Pulse           *string `json:"pulse,omitempty"`
	RespiratoryRate *int    `json:"respiratory_rate,omitempty"`
}

// MedicalRecord is a clinical note written by a doctor for a patient. The
// record code ("REC042") is the public identifier, assigned from a sequence
// when the record is stored.
type MedicalRecord struct {
	RecordID     string             `json:"record_id"`
	PatientID    uuid.UUID          `json:"patient_id"`
	DoctorID     uuid.UUID          `json:"doctor_id"`
	Diagnosis    string             `json:"diagnosis"`
	Prescription []PrescriptionItem `json:"prescription,omitempty"`
	VitalSigns   *VitalSigns        `json:"vital_signs,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	Status       string             `json:"status"`
	DateTime     time.Time          `json:"date_time"`
}

// CreateRecordRequest is the payload for writing a new record. The author is
// taken from the token, never from the body.
type CreateRecordRequest struct {
	PatientID    uuid.UUID          `json:"patient_id"`
	Diagnosis    string             `json:"diagnosis"`
	Prescription []PrescriptionItem `json:"prescription,omitempty"`
	VitalSigns   *VitalSigns        `json:"vital_signs,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
}

// UpdateRecordRequest carries a partial update. Prescription and vital signs
// replace the stored value wholesale when present.
type UpdateRecordRequest struct {
	Diagnosis    *string            `json:"diagnosis,omitempty"`
	Prescription []PrescriptionItem `json:"prescription,omitempty"`
	VitalSigns   *VitalSigns        `json:"vital_signs,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
}

func (r *UpdateRecordRequest) empty() bool {
	return r.Diagnosis == nil && r.Prescription == nil && r.VitalSigns == nil && r.Notes == nil
}
