package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Well-known appointment statuses. Status is stored as free text;
// only StatusCancelled carries meaning for conflict checks.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Appointment maps to the appointments table. Date and time are kept as
// ISO text (YYYY-MM-DD, HH:MM) so the double-booking triple compares by
// exact match and sorts chronologically.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	AppointmentDate string    `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CreateAppointmentRequest is the booking payload.
type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Notes           *string   `json:"notes"`
}

// UpdateAppointmentRequest carries a partial update over the mutable
// fields. Status is an open string; no transition rules are enforced.
type UpdateAppointmentRequest struct {
	AppointmentDate *string `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

func (r *UpdateAppointmentRequest) empty() bool {
	return r.AppointmentDate == nil && r.AppointmentTime == nil && r.Status == nil && r.Notes == nil
}

// PatientInfo is the patient slice of the details view.
type PatientInfo struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Age     *int      `json:"age,omitempty"`
	Contact *string   `json:"contact,omitempty"`
}

// DoctorInfo is the doctor slice of the details view.
type DoctorInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
}

// AppointmentDetails is the /appointments/{id}/details response.
type AppointmentDetails struct {
	ID              uuid.UUID   `json:"id"`
	AppointmentDate string      `json:"appointment_date"`
	AppointmentTime string      `json:"appointment_time"`
	Status          string      `json:"status"`
	Notes           *string     `json:"notes,omitempty"`
	Patient         PatientInfo `json:"patient"`
	Doctor          DoctorInfo  `json:"doctor"`
}
