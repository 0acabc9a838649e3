package medrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrRecordNotFound  = errors.New("medical record not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrNoDoctorProfile = errors.New("no doctor profile linked to this account")
	ErrNotAuthor       = errors.New("you can only edit records you created")
	ErrNoRecords       = errors.New("no medical records found for this patient")
	ErrNoFields        = errors.New("no fields to update")
)

// ProfileResolver maps an authenticated user to the staff profile that acts
// on their behalf.
type ProfileResolver interface {
	ResolveOwnProfile(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo    Repository
	doctors ProfileResolver
	tx      TxRunner
}

func NewService(repo Repository, doctors ProfileResolver, tx TxRunner) *Service {
	return &Service{repo: repo, doctors: doctors, tx: tx}
}

// Create writes a new record authored by the calling doctor. The author is
// resolved from the token subject, so a record can never be filed under
// someone else's name.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, req *CreateRecordRequest) (*MedicalRecord, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.Diagnosis == "" {
		return nil, fmt.Errorf("diagnosis is required")
	}
	doctorID, err := s.doctors.ResolveOwnProfile(ctx, callerID)
	if err != nil {
		return nil, ErrNoDoctorProfile
	}

	rec := &MedicalRecord{
		PatientID:  req.PatientID,
		DoctorID:   doctorID,
		Diagnosis:  req.Diagnosis,
		VitalSigns: req.VitalSigns,
		Notes:      req.Notes,
		Status:     StatusPending,
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.PatientExists(ctx, req.PatientID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPatientNotFound
		}
		rec.Prescription, err = s.resolvePrescription(ctx, req.Prescription)
		if err != nil {
			return err
		}
		return s.repo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// resolvePrescription checks every line that names an inventory item and
// fills in drug_name from the item when the author left it blank. Lines
// without an inventory reference must at least name the drug.
func (s *Service) resolvePrescription(ctx context.Context, lines []PrescriptionItem) ([]PrescriptionItem, error) {
	if lines == nil {
		return nil, nil
	}
	out := make([]PrescriptionItem, len(lines))
	for i, line := range lines {
		if line.InventoryItemID == nil {
			if line.DrugName == nil || *line.DrugName == "" {
				return nil, fmt.Errorf("prescription line %d needs an inventory_item_id or a drug_name", i+1)
			}
			out[i] = line
			continue
		}
		name, ok, err := s.repo.ItemName(ctx, *line.InventoryItemID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("inventory item not found: %s", line.InventoryItemID)
		}
		if line.DrugName == nil || *line.DrugName == "" {
			line.DrugName = &name
		}
		out[i] = line
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, recordID string) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// ListByPatient returns the patient's records, newest first. A patient with
// no records reads as not found rather than an empty page.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	records, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// Update lets the authoring doctor revise a record. Prescription and vital
// signs replace the stored value wholesale; prescription lines are resolved
// against inventory again.
func (s *Service) Update(ctx context.Context, recordID string, callerID uuid.UUID, req *UpdateRecordRequest) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	doctorID, err := s.doctors.ResolveOwnProfile(ctx, callerID)
	if err != nil {
		return nil, ErrNoDoctorProfile
	}
	if rec.DoctorID != doctorID {
		return nil, ErrNotAuthor
	}
	if req.empty() {
		return nil, ErrNoFields
	}
	if req.Diagnosis != nil {
		rec.Diagnosis = *req.Diagnosis
	}
	if req.Prescription != nil {
		rec.Prescription, err = s.resolvePrescription(ctx, req.Prescription)
		if err != nil {
			return nil, err
		}
	}
	if req.VitalSigns != nil {
		rec.VitalSigns = req.VitalSigns
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
