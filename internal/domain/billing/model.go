package billing

import (
	"time"

	"github.com/google/uuid"
)

// Well-known payment statuses. Stored as free text like appointment
// status; bills start Unpaid.
const (
	PaymentUnpaid = "Unpaid"
	PaymentPaid   = "Paid"
)

// Bill maps to the bills table. One bill per appointment, enforced by a
// unique index on appointment_id.
type Bill struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	InsuranceID   *uuid.UUID `db:"insurance_id" json:"insurance_id,omitempty"`
	Amount        float64    `db:"amount" json:"amount"`
	PaymentStatus string     `db:"payment_status" json:"payment_status"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Insurance maps to the insurance table. ExpiryDate is ISO text
// (YYYY-MM-DD) like the other calendar fields.
type Insurance struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProviderName   string    `db:"provider_name" json:"provider_name"`
	PolicyNumber   *string   `db:"policy_number" json:"policy_number,omitempty"`
	CoverageAmount *float64  `db:"coverage_amount" json:"coverage_amount,omitempty"`
	ExpiryDate     *string   `db:"expiry_date" json:"expiry_date,omitempty"`
}

type CreateBillRequest struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	InsuranceID   *uuid.UUID `json:"insurance_id"`
	Amount        *float64   `json:"amount"`
	PaymentMethod *string    `json:"payment_method"`
}

type UpdateBillRequest struct {
	Amount        *float64   `json:"amount"`
	PaymentStatus *string    `json:"payment_status"`
	PaymentMethod *string    `json:"payment_method"`
	InsuranceID   *uuid.UUID `json:"insurance_id"`
}

func (r *UpdateBillRequest) empty() bool {
	return r.Amount == nil && r.PaymentStatus == nil && r.PaymentMethod == nil && r.InsuranceID == nil
}

// PatientRef and DoctorRef are the party slices of the details view.
type PatientRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type DoctorRef struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
}

// BilledAppointment is the appointment slice of the details view.
type BilledAppointment struct {
	ID      uuid.UUID  `json:"id"`
	Date    string     `json:"date"`
	Time    string     `json:"time"`
	Patient PatientRef `json:"patient"`
	Doctor  DoctorRef  `json:"doctor"`
}

// InsuranceInfo is the insurance slice of the details view, present
// only when the bill carries an insurance reference.
type InsuranceInfo struct {
	ID             uuid.UUID `json:"id"`
	ProviderName   string    `json:"provider_name"`
	PolicyNumber   *string   `json:"policy_number,omitempty"`
	CoverageAmount *float64  `json:"coverage_amount,omitempty"`
}

// BillDetails is the /billing/{id}/details response.
type BillDetails struct {
	ID            uuid.UUID         `json:"id"`
	Amount        float64           `json:"amount"`
	PaymentStatus string            `json:"payment_status"`
	PaymentMethod *string           `json:"payment_method,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Appointment   BilledAppointment `json:"appointment"`
	Insurance     *InsuranceInfo    `json:"insurance,omitempty"`
}

// AppointmentBills is the /billing/appointment/{id} response.
type AppointmentBills struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Bills         []*Bill   `json:"bills"`
}

// InsuranceBills is the /insurance/{id}/bills response.
type InsuranceBills struct {
	InsuranceID  uuid.UUID `json:"insurance_id"`
	ProviderName string    `json:"provider_name"`
	PolicyNumber *string   `json:"policy_number,omitempty"`
	Bills        []*Bill   `json:"bills"`
}
