package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. UserID is back-filled when the person
// registers an account; until then the row is an admin-provisioned profile.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name           string     `db:"name" json:"name"`
	Age            *int       `db:"age" json:"age,omitempty"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	Contact        *string    `db:"contact" json:"contact,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	BloodType      *string    `db:"blood_type" json:"blood_type,omitempty"`
	MedicalHistory *string    `db:"medical_history" json:"medical_history,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// UpdatePatientRequest carries a partial update. Nil fields are left
// untouched; an all-nil payload is rejected.
type UpdatePatientRequest struct {
	Name           *string `json:"name"`
	Age            *int    `json:"age"`
	Gender         *string `json:"gender"`
	Contact        *string `json:"contact"`
	Address        *string `json:"address"`
	Email          *string `json:"email"`
	BloodType      *string `json:"blood_type"`
	MedicalHistory *string `json:"medical_history"`
}

func (r *UpdatePatientRequest) empty() bool {
	return r.Name == nil && r.Age == nil && r.Gender == nil && r.Contact == nil &&
		r.Address == nil && r.Email == nil && r.BloodType == nil && r.MedicalHistory == nil
}

// AppointmentSummary is the appointment shape joined into the
// patient-appointments view.
type AppointmentSummary struct {
	ID              uuid.UUID `db:"id" json:"id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DoctorName      string    `db:"doctor_name" json:"doctor_name"`
	AppointmentDate string    `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// PatientAppointments is the /patients/{id}/appointments response.
type PatientAppointments struct {
	PatientID    uuid.UUID            `json:"patient_id"`
	PatientName  string               `json:"patient_name"`
	Appointments []AppointmentSummary `json:"appointments"`
}
