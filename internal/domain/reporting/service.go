package reporting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const historyLimit = 50

// customReportTypes, in the order the error message advertises them.
var customReportTypes = []string{"patients", "doctors", "appointments", "billing", "inventory"}

// snapshotTables maps report types to the tables they dump. Lookups go
// through this map only, so request input never reaches the SQL text.
var snapshotTables = map[string]string{
	"patients":     "patients",
	"doctors":      "doctors",
	"appointments": "appointments",
	"billing":      "bills",
	"inventory":    "inventory",
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func checkRange(startDate, endDate *string) error {
	if startDate != nil && !validDate(*startDate) {
		return fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	if endDate != nil && !validDate(*endDate) {
		return fmt.Errorf("end_date must be YYYY-MM-DD")
	}
	return nil
}

func (s *Service) AppointmentReport(ctx context.Context, f AppointmentFilters) (*AppointmentReport, error) {
	if err := checkRange(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}
	rows, err := s.store.AppointmentRows(ctx, f)
	if err != nil {
		return nil, err
	}
	statuses, err := s.store.AppointmentStatusCounts(ctx, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	doctors, err := s.store.AppointmentDoctorCounts(ctx, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []AppointmentRow{}
	}
	return &AppointmentReport{
		ReportType:  "appointments",
		GeneratedAt: time.Now(),
		Filters:     f,
		Summary: AppointmentSummary{
			TotalAppointments: len(rows),
			StatusBreakdown:   statuses,
			DoctorBreakdown:   doctors,
		},
		Data: rows,
	}, nil
}

func (s *Service) FinancialReport(ctx context.Context, f FinancialFilters) (*FinancialReport, error) {
	if err := checkRange(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}
	rows, err := s.store.FinancialRows(ctx, f)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.FinancialTotals(ctx, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	methods, err := s.store.PaymentMethodBreakdown(ctx, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []FinancialRow{}
	}
	if methods == nil {
		methods = []MethodBreakdown{}
	}
	return &FinancialReport{
		ReportType:  "financial",
		GeneratedAt: time.Now(),
		Filters:     f,
		Summary: FinancialSummary{
			TotalBills:     totals.TotalBills,
			TotalRevenue:   totals.TotalRevenue,
			PaidAmount:     totals.PaidAmount,
			UnpaidAmount:   totals.UnpaidAmount,
			PaymentMethods: methods,
		},
		Data: rows,
	}, nil
}

func (s *Service) InventoryReport(ctx context.Context, f InventoryFilters) (*InventoryReport, error) {
	rows, err := s.store.InventoryRows(ctx, f)
	if err != nil {
		return nil, err
	}
	items, quantity, err := s.store.InventoryTotals(ctx, f)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.store.LowStockCount(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []InventoryRow{}
	}
	if categories == nil {
		categories = []CategoryCount{}
	}
	return &InventoryReport{
		ReportType:  "inventory",
		GeneratedAt: time.Now(),
		Filters:     f,
		Summary: InventorySummary{
			TotalItems:        items,
			TotalQuantity:     quantity,
			LowStockCount:     lowStock,
			CategoryBreakdown: categories,
		},
		Data: rows,
	}, nil
}

func (s *Service) PatientSummaryReport(ctx context.Context) (*PatientSummaryReport, error) {
	total, err := s.store.PatientCount(ctx)
	if err != nil {
		return nil, err
	}
	genders, err := s.store.GenderCounts(ctx)
	if err != nil {
		return nil, err
	}
	ages, err := s.store.AgeBucketCounts(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.store.TopPatients(ctx, 10)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []TopPatient{}
	}
	return &PatientSummaryReport{
		ReportType:  "patient_summary",
		GeneratedAt: time.Now(),
		Summary: PatientSummary{
			TotalPatients:      total,
			GenderDistribution: genders,
			AgeDistribution:    ages,
			TopPatients:        top,
		},
	}, nil
}

func (s *Service) DoctorPerformanceReport(ctx context.Context, f DateRangeFilters) (*DoctorPerformanceReport, error) {
	if err := checkRange(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}
	rows, err := s.store.DoctorPerformanceRows(ctx, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].TotalAppointments > 0 {
			rate := float64(rows[i].Completed) / float64(rows[i].TotalAppointments) * 100
			rows[i].CompletionRate = math.Round(rate*100) / 100
		}
	}
	if rows == nil {
		rows = []DoctorPerformance{}
	}
	return &DoctorPerformanceReport{
		ReportType:  "doctor_performance",
		GeneratedAt: time.Now(),
		Filters:     f,
		Data:        rows,
	}, nil
}

// CustomReport snapshots one of the whitelisted tables and records the run in
// the reports table.
func (s *Service) CustomReport(ctx context.Context, callerID uuid.UUID, req *CustomReportRequest) (*CustomReport, error) {
	table, ok := snapshotTables[req.ReportType]
	if !ok {
		return nil, fmt.Errorf("invalid report type. must be one of: %s", strings.Join(customReportTypes, ", "))
	}
	data, err := s.store.Snapshot(ctx, table)
	if err != nil {
		return nil, err
	}
	summary := fmt.Sprintf("Total records: %d", len(data))
	rep := &Report{
		Type:           req.ReportType,
		GeneratedBy:    &callerID,
		FiltersApplied: req.Filters,
		DataSummary:    &summary,
	}
	if err := s.store.SaveReport(ctx, rep); err != nil {
		return nil, err
	}
	return &CustomReport{
		ReportID:    rep.ID,
		ReportType:  rep.Type,
		GeneratedAt: rep.CreatedAt,
		GeneratedBy: callerID,
		Summary:     CustomSummary{TotalRecords: len(data)},
		Data:        data,
	}, nil
}

func (s *Service) History(ctx context.Context) (*History, error) {
	reports, err := s.store.ListReports(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(reports))
	for _, r := range reports {
		entries = append(entries, HistoryEntry{
			ID:          r.ID,
			Type:        r.Type,
			GeneratedBy: r.GeneratedBy,
			GeneratedAt: r.CreatedAt,
			Filters:     r.FiltersApplied,
			Summary:     r.DataSummary,
		})
	}
	return &History{Reports: entries}, nil
}
