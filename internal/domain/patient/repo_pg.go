package patient

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) Repository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, user_id, name, age, gender, contact, address, email,
	blood_type, medical_history, created_at, updated_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Address,
		&p.Email, &p.BloodType, &p.MedicalHistory, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, user_id, name, age, gender, contact, address, email,
			blood_type, medical_history)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.UserID, p.Name, p.Age, p.Gender, p.Contact, p.Address, p.Email,
		p.BloodType, p.MedicalHistory)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name=$2, age=$3, gender=$4, contact=$5, address=$6, email=$7,
			blood_type=$8, medical_history=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.Gender, p.Contact, p.Address, p.Email,
		p.BloodType, p.MedicalHistory)
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *patientRepoPG) ListAppointments(ctx context.Context, patientID uuid.UUID) ([]AppointmentSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.doctor_id, d.name, a.appointment_date, a.appointment_time,
			a.status, a.notes, a.created_at
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC, a.appointment_time DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AppointmentSummary
	for rows.Next() {
		var s AppointmentSummary
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.DoctorName, &s.AppointmentDate,
			&s.AppointmentTime, &s.Status, &s.Notes, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// LinkUser claims the unclaimed profile row matching the given name and
// email for the registering user.
func (r *patientRepoPG) LinkUser(ctx context.Context, fullName, email string, userID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET user_id = $3, updated_at = NOW()
		WHERE name = $1 AND email = $2 AND user_id IS NULL`,
		fullName, email, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
