package billing

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBillDetails_JSONOmitsNilInsurance(t *testing.T) {
	d := &BillDetails{
		ID:            uuid.New(),
		Amount:        150.00,
		PaymentStatus: PaymentUnpaid,
		Appointment: BilledAppointment{
			ID:      uuid.New(),
			Date:    "2025-03-10",
			Time:    "10:30",
			Patient: PatientRef{ID: uuid.New(), Name: "Jane Roe"},
			Doctor:  DoctorRef{ID: uuid.New(), Name: "Dr. Bob Reyes"},
		},
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "insurance") {
		t.Error("expected insurance key to be omitted when nil")
	}

	d.Insurance = &InsuranceInfo{ID: uuid.New(), ProviderName: "Acme Health"}
	data, err = json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"provider_name":"Acme Health"`) {
		t.Error("expected insurance block when set")
	}
}
