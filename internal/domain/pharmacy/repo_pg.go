package pharmacy

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/domain/medrecord"
	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type pharmacyRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyRepoPG(pool *pgxpool.Pool) Repository { return &pharmacyRepoPG{pool: pool} }

func (r *pharmacyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *pharmacyRepoPG) GetPrescription(ctx context.Context, recordID string) (*Prescription, error) {
	var p Prescription
	var lines []byte
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT record_id, status, prescription FROM medical_records WHERE record_id = $1`,
		recordID).Scan(&p.RecordID, &p.Status, &lines)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &p.Lines); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *pharmacyRepoPG) SetRecordStatus(ctx context.Context, recordID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE medical_records SET status = $2 WHERE record_id = $1`, recordID, status)
	return err
}

// LockItem holds the inventory row until the surrounding transaction ends, so
// concurrent dispenses of the same item queue up instead of double-spending
// stock.
func (r *pharmacyRepoPG) LockItem(ctx context.Context, id uuid.UUID) (*StockLine, bool, error) {
	var s StockLine
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, item_name, quantity, reorder_level FROM inventory WHERE id = $1 FOR UPDATE`,
		id).Scan(&s.ID, &s.ItemName, &s.Quantity, &s.ReorderLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (r *pharmacyRepoPG) DeductItem(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	var remaining int
	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE inventory SET quantity = quantity - $2 WHERE id = $1 RETURNING quantity`,
		id, qty).Scan(&remaining)
	return remaining, err
}

func (r *pharmacyRepoPG) ListPending(ctx context.Context) ([]*PendingPrescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.record_id, p.name, doc.name, r.prescription, r.date_time
		FROM medical_records r
		JOIN patients p ON p.id = r.patient_id
		JOIN doctors doc ON doc.id = r.doctor_id
		WHERE r.status = $1 AND r.prescription IS NOT NULL AND jsonb_array_length(r.prescription) > 0
		ORDER BY r.date_time ASC`, medrecord.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []*PendingPrescription
	for rows.Next() {
		var p PendingPrescription
		var lines []byte
		if err := rows.Scan(&p.PrescriptionID, &p.PatientName, &p.DoctorName, &lines, &p.DateIssued); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(lines, &p.Drugs); err != nil {
			return nil, err
		}
		pending = append(pending, &p)
	}
	return pending, rows.Err()
}

func (r *pharmacyRepoPG) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	var d DashboardSummary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM inventory),
			(SELECT COUNT(*) FROM inventory WHERE quantity <= reorder_level),
			(SELECT COUNT(*) FROM medical_records WHERE status = $1)`,
		medrecord.StatusPending).Scan(&d.TotalItems, &d.LowStockCount, &d.PendingPrescriptions)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
