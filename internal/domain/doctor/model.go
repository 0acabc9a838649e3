package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctors table. The availability window bounds are
// clock times in HH:MM; both nil means no window is configured.
type Doctor struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name          string     `db:"name" json:"name"`
	Specialty     *string    `db:"specialty" json:"specialty,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Email         *string    `db:"email" json:"email,omitempty"`
	AvailableFrom *string    `db:"available_from" json:"available_from,omitempty"`
	AvailableTo   *string    `db:"available_to" json:"available_to,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// UpdateDoctorRequest carries a partial update. Nil fields are left
// untouched; an all-nil payload is rejected.
type UpdateDoctorRequest struct {
	Name          *string `json:"name"`
	Specialty     *string `json:"specialty"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	AvailableFrom *string `json:"available_from"`
	AvailableTo   *string `json:"available_to"`
}

func (r *UpdateDoctorRequest) empty() bool {
	return r.Name == nil && r.Specialty == nil && r.Phone == nil && r.Email == nil &&
		r.AvailableFrom == nil && r.AvailableTo == nil
}

// ScheduleRequest sets both bounds of the availability window; a nil bound
// clears it.
type ScheduleRequest struct {
	AvailableFrom *string `json:"available_from"`
	AvailableTo   *string `json:"available_to"`
}

// ScheduleView is the /doctors/{id}/schedule response.
type ScheduleView struct {
	DoctorID      uuid.UUID `json:"doctor_id"`
	DoctorName    string    `json:"doctor_name"`
	AvailableFrom *string   `json:"available_from"`
	AvailableTo   *string   `json:"available_to"`
}

// AppointmentSummary is the appointment shape joined into the
// doctor-appointments view.
type AppointmentSummary struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	PatientName     string    `db:"patient_name" json:"patient_name"`
	AppointmentDate string    `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// DoctorAppointments is the /doctors/{id}/appointments response.
type DoctorAppointments struct {
	DoctorID     uuid.UUID            `json:"doctor_id"`
	DoctorName   string               `json:"doctor_name"`
	Appointments []AppointmentSummary `json:"appointments"`
}
