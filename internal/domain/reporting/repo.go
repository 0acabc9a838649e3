package reporting

import (
	"context"
)

// Store runs the read-side aggregation queries the reports are built from.
// Everything except SaveReport is a plain grouped query; Snapshot dumps a
// whitelisted table for custom reports.
type Store interface {
	AppointmentRows(ctx context.Context, f AppointmentFilters) ([]AppointmentRow, error)
	AppointmentStatusCounts(ctx context.Context, startDate, endDate *string) (map[string]int, error)
	AppointmentDoctorCounts(ctx context.Context, startDate, endDate *string) (map[string]int, error)

	FinancialRows(ctx context.Context, f FinancialFilters) ([]FinancialRow, error)
	FinancialTotals(ctx context.Context, startDate, endDate *string) (*FinancialTotals, error)
	PaymentMethodBreakdown(ctx context.Context, startDate, endDate *string) ([]MethodBreakdown, error)

	InventoryRows(ctx context.Context, f InventoryFilters) ([]InventoryRow, error)
	InventoryTotals(ctx context.Context, f InventoryFilters) (items, quantity int, err error)
	LowStockCount(ctx context.Context) (int, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)

	PatientCount(ctx context.Context) (int, error)
	GenderCounts(ctx context.Context) (map[string]int, error)
	AgeBucketCounts(ctx context.Context) (map[string]int, error)
	TopPatients(ctx context.Context, limit int) ([]TopPatient, error)

	DoctorPerformanceRows(ctx context.Context, startDate, endDate *string) ([]DoctorPerformance, error)

	Snapshot(ctx context.Context, table string) ([]map[string]interface{}, error)
	SaveReport(ctx context.Context, r *Report) error
	ListReports(ctx context.Context, limit int) ([]*Report, error)
}
