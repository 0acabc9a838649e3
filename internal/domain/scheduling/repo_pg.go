package scheduling

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

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) Repository { return &appointmentRepoPG{pool: pool} }

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, appointment_date, appointment_time,
	status, notes, created_at, updated_at`

func (r *appointmentRepoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.AppointmentTime,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_date,
			appointment_time, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.AppointmentTime, a.Status, a.Notes)
	if db.IsUniqueViolation(err) {
		return ErrSlotTaken
	}
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) GetDetails(ctx context.Context, id uuid.UUID) (*AppointmentDetails, error) {
	var d AppointmentDetails
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT a.id, a.appointment_date, a.appointment_time, a.status, a.notes,
			p.id, p.name, p.age, p.contact,
			doc.id, doc.name, doc.specialty, doc.phone
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors doc ON doc.id = a.doctor_id
		WHERE a.id = $1`, id).Scan(
		&d.ID, &d.AppointmentDate, &d.AppointmentTime, &d.Status, &d.Notes,
		&d.Patient.ID, &d.Patient.Name, &d.Patient.Age, &d.Patient.Contact,
		&d.Doctor.ID, &d.Doctor.Name, &d.Doctor.Specialty, &d.Doctor.Phone)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET appointment_date=$2, appointment_time=$3, status=$4,
			notes=$5, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.AppointmentDate, a.AppointmentTime, a.Status, a.Notes)
	if db.IsUniqueViolation(err) {
		return ErrSlotTaken
	}
	return err
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *appointmentRepoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		ORDER BY appointment_date DESC, appointment_time DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE doctor_id = $1
		ORDER BY appointment_date DESC, appointment_time DESC
		LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date DESC, appointment_time DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// LockDoctorWindow takes a row lock on the doctor so concurrent bookings
// for the same doctor serialize, and returns the availability window.
func (r *appointmentRepoPG) LockDoctorWindow(ctx context.Context, doctorID uuid.UUID) (*string, *string, error) {
	var from, to *string
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT available_from, available_to FROM doctors WHERE id = $1 FOR UPDATE`,
		doctorID).Scan(&from, &to)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func (r *appointmentRepoPG) ExistsActive(ctx context.Context, doctorID uuid.UUID, date, clock string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
				AND status <> $4 AND id <> $5
		)`, doctorID, date, clock, StatusCancelled, exclude).Scan(&exists)
	return exists, err
}
