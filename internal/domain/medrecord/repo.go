package medrecord

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores medical records. Create assigns the record code from the
// record_code_seq sequence in the same transaction as the insert, so codes are
// unique even under concurrent writes. ItemName and PatientExists are probes
// into neighbouring tables used while validating a record.
type Repository interface {
	Create(ctx context.Context, rec *MedicalRecord) error
	GetByID(ctx context.Context, recordID string) (*MedicalRecord, error)
	Update(ctx context.Context, rec *MedicalRecord) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	ItemName(ctx context.Context, id uuid.UUID) (string, bool, error)
}
