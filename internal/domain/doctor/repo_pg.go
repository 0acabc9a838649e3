package doctor

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

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) Repository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, user_id, name, specialty, phone, email,
	available_from, available_to, created_at, updated_at`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialty, &d.Phone, &d.Email,
		&d.AvailableFrom, &d.AvailableTo, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, user_id, name, specialty, phone, email,
			available_from, available_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.UserID, d.Name, d.Specialty, d.Phone, d.Email,
		d.AvailableFrom, d.AvailableTo)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET name=$2, specialty=$3, phone=$4, email=$5,
			available_from=$6, available_to=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialty, d.Phone, d.Email, d.AvailableFrom, d.AvailableTo)
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) ListAppointments(ctx context.Context, doctorID uuid.UUID) ([]AppointmentSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.patient_id, p.name, a.appointment_date, a.appointment_time,
			a.status, a.notes, a.created_at
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1
		ORDER BY a.appointment_date DESC, a.appointment_time DESC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AppointmentSummary
	for rows.Next() {
		var s AppointmentSummary
		if err := rows.Scan(&s.ID, &s.PatientID, &s.PatientName, &s.AppointmentDate,
			&s.AppointmentTime, &s.Status, &s.Notes, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// LinkUser claims the unclaimed profile row matching the given name and
// email for the registering user.
func (r *doctorRepoPG) LinkUser(ctx context.Context, fullName, email string, userID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET user_id = $3, updated_at = NOW()
		WHERE name = $1 AND email = $2 AND user_id IS NULL`,
		fullName, email, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
