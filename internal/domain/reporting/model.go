package reporting

import (
	"time"

	"github.com/google/uuid"
)

// Report is the persisted metadata row written for every custom report, so
// operators can see who generated what and when.
type Report struct {
	ID             uuid.UUID
	Type           string
	GeneratedBy    *uuid.UUID
	FiltersApplied map[string]interface{}
	DataSummary    *string
	CreatedAt      time.Time
}

// -- Appointment report --

type AppointmentFilters struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status"`
}

type AppointmentRow struct {
	ID              uuid.UUID `json:"id"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Status          string    `json:"status"`
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	DoctorSpecialty *string   `json:"doctor_specialty"`
}

// AppointmentSummary counts run over the date window only; the status filter
// narrows the row listing but not the breakdowns.
type AppointmentSummary struct {
	TotalAppointments int            `json:"total_appointments"`
	StatusBreakdown   map[string]int `json:"status_breakdown"`
	DoctorBreakdown   map[string]int `json:"doctor_breakdown"`
}

type AppointmentReport struct {
	ReportType  string             `json:"report_type"`
	GeneratedAt time.Time          `json:"generated_at"`
	Filters     AppointmentFilters `json:"filters"`
	Summary     AppointmentSummary `json:"summary"`
	Data        []AppointmentRow   `json:"data"`
}

// -- Financial report --

type FinancialFilters struct {
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	PaymentStatus *string `json:"payment_status"`
}

type FinancialRow struct {
	ID              uuid.UUID `json:"id"`
	Amount          float64   `json:"amount"`
	PaymentStatus   string    `json:"payment_status"`
	PaymentMethod   *string   `json:"payment_method"`
	AppointmentDate string    `json:"appointment_date"`
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	Insurance       *string   `json:"insurance"`
}

type MethodBreakdown struct {
	Method string  `json:"method"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}

// FinancialTotals is the aggregate slice of the financial summary, computed
// over the date window.
type FinancialTotals struct {
	TotalBills   int
	TotalRevenue float64
	PaidAmount   float64
	UnpaidAmount float64
}

type FinancialSummary struct {
	TotalBills     int               `json:"total_bills"`
	TotalRevenue   float64           `json:"total_revenue"`
	PaidAmount     float64           `json:"paid_amount"`
	UnpaidAmount   float64           `json:"unpaid_amount"`
	PaymentMethods []MethodBreakdown `json:"payment_methods"`
}

type FinancialReport struct {
	ReportType  string           `json:"report_type"`
	GeneratedAt time.Time        `json:"generated_at"`
	Filters     FinancialFilters `json:"filters"`
	Summary     FinancialSummary `json:"summary"`
	Data        []FinancialRow   `json:"data"`
}

// -- Inventory report --

type InventoryFilters struct {
	Category     *string `json:"category"`
	LowStockOnly bool    `json:"low_stock_only"`
}

type InventoryRow struct {
	ID           uuid.UUID `json:"id"`
	ItemName     string    `json:"item_name"`
	Category     *string   `json:"category"`
	Quantity     int       `json:"quantity"`
	Supplier     *string   `json:"supplier"`
	ReorderLevel int       `json:"reorder_level"`
	NeedsReorder bool      `json:"needs_reorder"`
}

type CategoryCount struct {
	Category      string `json:"category"`
	ItemCount     int    `json:"item_count"`
	TotalQuantity int    `json:"total_quantity"`
}

// InventorySummary: total_items and total_quantity respect the filters;
// low_stock_count and the category breakdown always cover the whole store.
type InventorySummary struct {
	TotalItems        int             `json:"total_items"`
	TotalQuantity     int             `json:"total_quantity"`
	LowStockCount     int             `json:"low_stock_count"`
	CategoryBreakdown []CategoryCount `json:"category_breakdown"`
}

type InventoryReport struct {
	ReportType  string           `json:"report_type"`
	GeneratedAt time.Time        `json:"generated_at"`
	Filters     InventoryFilters `json:"filters"`
	Summary     InventorySummary `json:"summary"`
	Data        []InventoryRow   `json:"data"`
}

// -- Patient summary --

type TopPatient struct {
	Name             string `json:"name"`
	AppointmentCount int    `json:"appointment_count"`
}

type PatientSummary struct {
	TotalPatients      int            `json:"total_patients"`
	GenderDistribution map[string]int `json:"gender_distribution"`
	AgeDistribution    map[string]int `json:"age_distribution"`
	TopPatients        []TopPatient   `json:"top_patients"`
}

type PatientSummaryReport struct {
	ReportType  string         `json:"report_type"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     PatientSummary `json:"summary"`
}

// -- Doctor performance --

type DateRangeFilters struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type DoctorPerformance struct {
	DoctorID          uuid.UUID `json:"doctor_id"`
	Name              string    `json:"name"`
	Specialty         *string   `json:"specialty"`
	TotalAppointments int       `json:"total_appointments"`
	Completed         int       `json:"completed"`
	Cancelled         int       `json:"cancelled"`
	CompletionRate    float64   `json:"completion_rate"`
}

type DoctorPerformanceReport struct {
	ReportType  string              `json:"report_type"`
	GeneratedAt time.Time           `json:"generated_at"`
	Filters     DateRangeFilters    `json:"filters"`
	Data        []DoctorPerformance `json:"data"`
}

// -- Custom report --

type CustomReportRequest struct {
	ReportType string                 `json:"report_type"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
}

type CustomSummary struct {
	TotalRecords int `json:"total_records"`
}

type CustomReport struct {
	ReportID    uuid.UUID                `json:"report_id"`
	ReportType  string                   `json:"report_type"`
	GeneratedAt time.Time                `json:"generated_at"`
	GeneratedBy uuid.UUID                `json:"generated_by"`
	Summary     CustomSummary            `json:"summary"`
	Data        []map[string]interface{} `json:"data"`
}

// -- History --

type HistoryEntry struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	GeneratedBy *uuid.UUID             `json:"generated_by"`
	GeneratedAt time.Time              `json:"generated_at"`
	Filters     map[string]interface{} `json:"filters"`
	Summary     *string                `json:"summary"`
}

type History struct {
	Reports []HistoryEntry `json:"reports"`
}
