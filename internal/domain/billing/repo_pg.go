package billing

import (
	"context"

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

type billRepoPG struct{ pool *pgxpool.Pool }

func NewBillRepoPG(pool *pgxpool.Pool) BillRepository { return &billRepoPG{pool: pool} }

func (r *billRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const billCols = `id, appointment_id, insurance_id, amount, payment_status, payment_method, created_at`

func (r *billRepoPG) scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.AppointmentID, &b.InsuranceID, &b.Amount,
		&b.PaymentStatus, &b.PaymentMethod, &b.CreatedAt)
	return &b, err
}

func (r *billRepoPG) Create(ctx context.Context, b *Bill) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bills (id, appointment_id, insurance_id, amount, payment_status, payment_method)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.AppointmentID, b.InsuranceID, b.Amount, b.PaymentStatus, b.PaymentMethod)
	if db.IsUniqueViolation(err) {
		return ErrBillExists
	}
	return err
}

func (r *billRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return r.scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE id = $1`, id))
}

func (r *billRepoPG) GetDetails(ctx context.Context, id uuid.UUID) (*BillDetails, error) {
	var d BillDetails
	var insID *uuid.UUID
	var insProvider, insPolicy *string
	var insCoverage *float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT b.id, b.amount, b.payment_status, b.payment_method, b.created_at,
			a.id, a.appointment_date, a.appointment_time,
			p.id, p.name,
			doc.id, doc.name, doc.specialty,
			i.id, i.provider_name, i.policy_number, i.coverage_amount
		FROM bills b
		JOIN appointments a ON a.id = b.appointment_id
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors doc ON doc.id = a.doctor_id
		LEFT JOIN insurance i ON i.id = b.insurance_id
		WHERE b.id = $1`, id).Scan(
		&d.ID, &d.Amount, &d.PaymentStatus, &d.PaymentMethod, &d.CreatedAt,
		&d.Appointment.ID, &d.Appointment.Date, &d.Appointment.Time,
		&d.Appointment.Patient.ID, &d.Appointment.Patient.Name,
		&d.Appointment.Doctor.ID, &d.Appointment.Doctor.Name, &d.Appointment.Doctor.Specialty,
		&insID, &insProvider, &insPolicy, &insCoverage)
	if err != nil {
		return nil, err
	}
	if insID != nil {
		d.Insurance = &InsuranceInfo{
			ID:             *insID,
			ProviderName:   *insProvider,
			PolicyNumber:   insPolicy,
			CoverageAmount: insCoverage,
		}
	}
	return &d, nil
}

func (r *billRepoPG) Update(ctx context.Context, b *Bill) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bills SET insurance_id=$2, amount=$3, payment_status=$4, payment_method=$5
		WHERE id = $1`,
		b.ID, b.InsuranceID, b.Amount, b.PaymentStatus, b.PaymentMethod)
	return err
}

func (r *billRepoPG) List(ctx context.Context, limit, offset int) ([]*Bill, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bills`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+billCols+` FROM bills
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *billRepoPG) collect(rows pgx.Rows) ([]*Bill, error) {
	defer rows.Close()
	var items []*Bill
	for rows.Next() {
		b, err := r.scanBill(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *billRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Bill, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+billCols+` FROM bills
		WHERE appointment_id = $1
		ORDER BY created_at DESC`, appointmentID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *billRepoPG) ListByInsurance(ctx context.Context, insuranceID uuid.UUID) ([]*Bill, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+billCols+` FROM bills
		WHERE insurance_id = $1
		ORDER BY created_at DESC`, insuranceID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *billRepoPG) AppointmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

type insuranceRepoPG struct{ pool *pgxpool.Pool }

func NewInsuranceRepoPG(pool *pgxpool.Pool) InsuranceRepository { return &insuranceRepoPG{pool: pool} }

func (r *insuranceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const insuranceCols = `id, provider_name, policy_number, coverage_amount, expiry_date`

func (r *insuranceRepoPG) scanInsurance(row pgx.Row) (*Insurance, error) {
	var ins Insurance
	err := row.Scan(&ins.ID, &ins.ProviderName, &ins.PolicyNumber, &ins.CoverageAmount, &ins.ExpiryDate)
	return &ins, err
}

func (r *insuranceRepoPG) Create(ctx context.Context, ins *Insurance) error {
	ins.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance (id, provider_name, policy_number, coverage_amount, expiry_date)
		VALUES ($1,$2,$3,$4,$5)`,
		ins.ID, ins.ProviderName, ins.PolicyNumber, ins.CoverageAmount, ins.ExpiryDate)
	return err
}

func (r *insuranceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Insurance, error) {
	return r.scanInsurance(r.conn(ctx).QueryRow(ctx, `SELECT `+insuranceCols+` FROM insurance WHERE id = $1`, id))
}

func (r *insuranceRepoPG) List(ctx context.Context, limit, offset int) ([]*Insurance, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insurance`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+insuranceCols+` FROM insurance
		ORDER BY provider_name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Insurance
	for rows.Next() {
		ins, err := r.scanInsurance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ins)
	}
	return items, total, rows.Err()
}
