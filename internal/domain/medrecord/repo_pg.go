package medrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) Repository { return &recordRepoPG{pool: pool} }

func (r *recordRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `record_id, patient_id, doctor_id, diagnosis, prescription, vital_signs, notes, status, date_time`

func (r *recordRepoPG) scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	var presc, vitals []byte
	err := row.Scan(&rec.RecordID, &rec.PatientID, &rec.DoctorID, &rec.Diagnosis,
		&presc, &vitals, &rec.Notes, &rec.Status, &rec.DateTime)
	if err != nil {
		return nil, err
	}
	if len(presc) > 0 {
		if err := json.Unmarshal(presc, &rec.Prescription); err != nil {
			return nil, err
		}
	}
	if len(vitals) > 0 {
		if err := json.Unmarshal(vitals, &rec.VitalSigns); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

// clinicalJSON marshals the jsonb columns. Nil values become SQL NULL rather
// than the JSON literal null.
func clinicalJSON(rec *MedicalRecord) (presc, vitals []byte, err error) {
	if rec.Prescription != nil {
		if presc, err = json.Marshal(rec.Prescription); err != nil {
			return nil, nil, err
		}
	}
	if rec.VitalSigns != nil {
		if vitals, err = json.Marshal(rec.VitalSigns); err != nil {
			return nil, nil, err
		}
	}
	return presc, vitals, nil
}

func (r *recordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	presc, vitals, err := clinicalJSON(rec)
	if err != nil {
		return err
	}
	var seq int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('record_code_seq')`).Scan(&seq); err != nil {
		return err
	}
	rec.RecordID = fmt.Sprintf("REC%03d", seq)
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (record_id, patient_id, doctor_id, diagnosis, prescription, vital_signs, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.RecordID, rec.PatientID, rec.DoctorID, rec.Diagnosis, presc, vitals, rec.Notes, rec.Status)
	return err
}

func (r *recordRepoPG) GetByID(ctx context.Context, recordID string) (*MedicalRecord, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE record_id = $1`, recordID))
}

func (r *recordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	presc, vitals, err := clinicalJSON(rec)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET diagnosis=$2, prescription=$3, vital_signs=$4, notes=$5
		WHERE record_id = $1`,
		rec.RecordID, rec.Diagnosis, presc, vitals, rec.Notes)
	return err
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM medical_records
		WHERE patient_id = $1
		ORDER BY date_time DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*MedicalRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *recordRepoPG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *recordRepoPG) ItemName(ctx context.Context, id uuid.UUID) (string, bool, error) {
	var name string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT item_name FROM inventory WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}
