package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBillNotFound        = errors.New("bill not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInsuranceNotFound   = errors.New("insurance not found")
	ErrBillExists          = errors.New("bill already exists for this appointment")
	ErrNoFields            = errors.New("no fields to update")
)

type Service struct {
	bills     BillRepository
	insurance InsuranceRepository
}

func NewService(bills BillRepository, insurance InsuranceRepository) *Service {
	return &Service{bills: bills, insurance: insurance}
}

// CreateBill issues the bill for an appointment. The unique index on
// bills.appointment_id is the authority for the one-bill rule; the
// pre-check only produces a friendlier path for the common case.
func (s *Service) CreateBill(ctx context.Context, req *CreateBillRequest) (*Bill, error) {
	if req.AppointmentID == uuid.Nil {
		return nil, fmt.Errorf("appointment_id is required")
	}
	if req.Amount == nil {
		return nil, fmt.Errorf("amount is required")
	}
	ok, err := s.bills.AppointmentExists(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if req.InsuranceID != nil {
		if _, err := s.insurance.GetByID(ctx, *req.InsuranceID); err != nil {
			return nil, ErrInsuranceNotFound
		}
	}
	existing, err := s.bills.ListByAppointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrBillExists
	}

	b := &Bill{
		AppointmentID: req.AppointmentID,
		InsuranceID:   req.InsuranceID,
		Amount:        *req.Amount,
		PaymentStatus: PaymentUnpaid,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.bills.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, ErrBillNotFound
	}
	return b, nil
}

func (s *Service) GetBillDetails(ctx context.Context, id uuid.UUID) (*BillDetails, error) {
	d, err := s.bills.GetDetails(ctx, id)
	if err != nil {
		return nil, ErrBillNotFound
	}
	return d, nil
}

func (s *Service) UpdateBill(ctx context.Context, id uuid.UUID, req *UpdateBillRequest) (*Bill, error) {
	if req.empty() {
		return nil, ErrNoFields
	}
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, ErrBillNotFound
	}
	if req.InsuranceID != nil {
		if _, err := s.insurance.GetByID(ctx, *req.InsuranceID); err != nil {
			return nil, ErrInsuranceNotFound
		}
		b.InsuranceID = req.InsuranceID
	}
	if req.Amount != nil {
		b.Amount = *req.Amount
	}
	if req.PaymentStatus != nil {
		b.PaymentStatus = *req.PaymentStatus
	}
	if req.PaymentMethod != nil {
		b.PaymentMethod = req.PaymentMethod
	}
	if err := s.bills.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBills(ctx context.Context, limit, offset int) ([]*Bill, int, error) {
	items, total, err := s.bills.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Bill{}
	}
	return items, total, nil
}

// BillsForAppointment returns the appointment's bills, empty when the
// appointment has none.
func (s *Service) BillsForAppointment(ctx context.Context, appointmentID uuid.UUID) (*AppointmentBills, error) {
	ok, err := s.bills.AppointmentExists(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	bills, err := s.bills.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []*Bill{}
	}
	return &AppointmentBills{AppointmentID: appointmentID, Bills: bills}, nil
}

func (s *Service) CreateInsurance(ctx context.Context, ins *Insurance) (*Insurance, error) {
	if ins.ProviderName == "" {
		return nil, fmt.Errorf("provider_name is required")
	}
	if ins.ExpiryDate != nil {
		if _, err := time.Parse("2006-01-02", *ins.ExpiryDate); err != nil {
			return nil, fmt.Errorf("expiry_date must be YYYY-MM-DD")
		}
	}
	if err := s.insurance.Create(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}

func (s *Service) GetInsurance(ctx context.Context, id uuid.UUID) (*Insurance, error) {
	ins, err := s.insurance.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInsuranceNotFound
	}
	return ins, nil
}

func (s *Service) ListInsurance(ctx context.Context, limit, offset int) ([]*Insurance, int, error) {
	items, total, err := s.insurance.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Insurance{}
	}
	return items, total, nil
}

// BillsForInsurance returns the bills charged against one insurance
// record.
func (s *Service) BillsForInsurance(ctx context.Context, insuranceID uuid.UUID) (*InsuranceBills, error) {
	ins, err := s.insurance.GetByID(ctx, insuranceID)
	if err != nil {
		return nil, ErrInsuranceNotFound
	}
	bills, err := s.bills.ListByInsurance(ctx, insuranceID)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []*Bill{}
	}
	return &InsuranceBills{
		InsuranceID:  ins.ID,
		ProviderName: ins.ProviderName,
		PolicyNumber: ins.PolicyNumber,
		Bills:        bills,
	}, nil
}
