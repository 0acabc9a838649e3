package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// storePG answers every report from plain pool queries; reports never join a
// surrounding transaction, so there is no tx plumbing here.
type storePG struct{ pool *pgxpool.Pool }

func NewStorePG(pool *pgxpool.Pool) Store { return &storePG{pool: pool} }

// filterBuilder accumulates optional WHERE conditions with positional
// placeholders. Conditions carry a $%d verb that gets the next arg number.
type filterBuilder struct {
	where []string
	args  []interface{}
}

func (f *filterBuilder) add(cond string, val interface{}) {
	f.args = append(f.args, val)
	f.where = append(f.where, fmt.Sprintf(cond, len(f.args)))
}

func (f *filterBuilder) clause() string {
	if len(f.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.where, " AND ")
}

func dateRange(col string, startDate, endDate *string) *filterBuilder {
	fb := &filterBuilder{}
	if startDate != nil {
		fb.add(col+" >= $%d", *startDate)
	}
	if endDate != nil {
		fb.add(col+" <= $%d", *endDate)
	}
	return fb
}

// -- Appointments --

func (s *storePG) AppointmentRows(ctx context.Context, f AppointmentFilters) ([]AppointmentRow, error) {
	fb := dateRange("a.appointment_date", f.StartDate, f.EndDate)
	if f.Status != nil {
		fb.add("a.status = $%d", *f.Status)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.appointment_date, a.appointment_time, a.status, p.name, doc.name, doc.specialty
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors doc ON doc.id = a.doctor_id`+fb.clause()+`
		ORDER BY a.appointment_date DESC, a.appointment_time DESC`, fb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AppointmentRow
	for rows.Next() {
		var r AppointmentRow
		if err := rows.Scan(&r.ID, &r.Date, &r.Time, &r.Status, &r.PatientName, &r.DoctorName, &r.DoctorSpecialty); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *storePG) AppointmentStatusCounts(ctx context.Context, startDate, endDate *string) (map[string]int, error) {
	fb := dateRange("appointment_date", startDate, endDate)
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM appointments`+fb.clause()+` GROUP BY status`, fb.args...)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

func (s *storePG) AppointmentDoctorCounts(ctx context.Context, startDate, endDate *string) (map[string]int, error) {
	fb := dateRange("a.appointment_date", startDate, endDate)
	rows, err := s.pool.Query(ctx, `
		SELECT doc.name, COUNT(*)
		FROM appointments a
		JOIN doctors doc ON doc.id = a.doctor_id`+fb.clause()+`
		GROUP BY doc.name`, fb.args...)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

func scanCounts(rows pgx.Rows) (map[string]int, error) {
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// -- Financial --

func (s *storePG) FinancialRows(ctx context.Context, f FinancialFilters) ([]FinancialRow, error) {
	fb := dateRange("a.appointment_date", f.StartDate, f.EndDate)
	if f.PaymentStatus != nil {
		fb.add("b.payment_status = $%d", *f.PaymentStatus)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.amount, b.payment_status, b.payment_method, a.appointment_date, p.name, doc.name, i.provider_name
		FROM bills b
		JOIN appointments a ON a.id = b.appointment_id
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors doc ON doc.id = a.doctor_id
		LEFT JOIN insurance i ON i.id = b.insurance_id`+fb.clause()+`
		ORDER BY b.created_at DESC`, fb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FinancialRow
	for rows.Next() {
		var r FinancialRow
		if err := rows.Scan(&r.ID, &r.Amount, &r.PaymentStatus, &r.PaymentMethod,
			&r.AppointmentDate, &r.PatientName, &r.DoctorName, &r.Insurance); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *storePG) FinancialTotals(ctx context.Context, startDate, endDate *string) (*FinancialTotals, error) {
	fb := dateRange("a.appointment_date", startDate, endDate)
	var t FinancialTotals
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(b.id), COALESCE(SUM(b.amount), 0),
			COALESCE(SUM(b.amount) FILTER (WHERE b.payment_status = 'Paid'), 0),
			COALESCE(SUM(b.amount) FILTER (WHERE b.payment_status = 'Unpaid'), 0)
		FROM bills b
		JOIN appointments a ON a.id = b.appointment_id`+fb.clause(), fb.args...).
		Scan(&t.TotalBills, &t.TotalRevenue, &t.PaidAmount, &t.UnpaidAmount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *storePG) PaymentMethodBreakdown(ctx context.Context, startDate, endDate *string) ([]MethodBreakdown, error) {
	fb := dateRange("a.appointment_date", startDate, endDate)
	fb.where = append(fb.where, "b.payment_method IS NOT NULL")
	rows, err := s.pool.Query(ctx, `
		SELECT b.payment_method, COUNT(b.id), COALESCE(SUM(b.amount), 0)
		FROM bills b
		JOIN appointments a ON a.id = b.appointment_id`+fb.clause()+`
		GROUP BY b.payment_method`, fb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MethodBreakdown
	for rows.Next() {
		var m MethodBreakdown
		if err := rows.Scan(&m.Method, &m.Count, &m.Total); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// -- Inventory --

func inventoryWhere(f InventoryFilters) *filterBuilder {
	fb := &filterBuilder{}
	if f.Category != nil {
		fb.add("category = $%d", *f.Category)
	}
	if f.LowStockOnly {
		fb.where = append(fb.where, "quantity <= reorder_level")
	}
	return fb
}

func (s *storePG) InventoryRows(ctx context.Context, f InventoryFilters) ([]InventoryRow, error) {
	fb := inventoryWhere(f)
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_name, category, quantity, supplier, reorder_level, quantity <= reorder_level
		FROM inventory`+fb.clause()+`
		ORDER BY item_name`, fb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InventoryRow
	for rows.Next() {
		var r InventoryRow
		if err := rows.Scan(&r.ID, &r.ItemName, &r.Category, &r.Quantity, &r.Supplier, &r.ReorderLevel, &r.NeedsReorder); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *storePG) InventoryTotals(ctx context.Context, f InventoryFilters) (int, int, error) {
	fb := inventoryWhere(f)
	var items, quantity int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM inventory`+fb.clause(), fb.args...).
		Scan(&items, &quantity)
	return items, quantity, err
}

func (s *storePG) LowStockCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory WHERE quantity <= reorder_level`).Scan(&n)
	return n, err
}

func (s *storePG) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(category, 'Uncategorized'), COUNT(*), COALESCE(SUM(quantity), 0)
		FROM inventory
		GROUP BY category
		ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.ItemCount, &c.TotalQuantity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// -- Patients --

func (s *storePG) PatientCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}

func (s *storePG) GenderCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(gender, 'Not specified'), COUNT(*)
		FROM patients
		GROUP BY gender`)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

func (s *storePG) AgeBucketCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT CASE
			WHEN age < 18 THEN 'Under 18'
			WHEN age BETWEEN 18 AND 35 THEN '18-35'
			WHEN age BETWEEN 36 AND 50 THEN '36-50'
			WHEN age BETWEEN 51 AND 65 THEN '51-65'
			ELSE 'Over 65'
		END, COUNT(*)
		FROM patients
		WHERE age IS NOT NULL
		GROUP BY 1`)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

func (s *storePG) TopPatients(ctx context.Context, limit int) ([]TopPatient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.name, COUNT(a.id)
		FROM patients p
		JOIN appointments a ON a.patient_id = p.id
		GROUP BY p.id, p.name
		ORDER BY COUNT(a.id) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopPatient
	for rows.Next() {
		var t TopPatient
		if err := rows.Scan(&t.Name, &t.AppointmentCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// -- Doctors --

func (s *storePG) DoctorPerformanceRows(ctx context.Context, startDate, endDate *string) ([]DoctorPerformance, error) {
	fb := dateRange("a.appointment_date", startDate, endDate)
	rows, err := s.pool.Query(ctx, `
		SELECT doc.id, doc.name, doc.specialty, COUNT(a.id),
			COUNT(*) FILTER (WHERE a.status = 'Completed'),
			COUNT(*) FILTER (WHERE a.status = 'Cancelled')
		FROM doctors doc
		JOIN appointments a ON a.doctor_id = doc.id`+fb.clause()+`
		GROUP BY doc.id, doc.name, doc.specialty
		ORDER BY COUNT(a.id) DESC`, fb.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DoctorPerformance
	for rows.Next() {
		var d DoctorPerformance
		if err := rows.Scan(&d.DoctorID, &d.Name, &d.Specialty, &d.TotalAppointments, &d.Completed, &d.Cancelled); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// -- Custom / history --

// Snapshot dumps a table into generic row maps. The table name comes from the
// service's whitelist, never from request input.
func (s *storePG) Snapshot(ctx context.Context, table string) ([]map[string]interface{}, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY created_at DESC`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	var results []map[string]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			v := values[i]
			if b, ok := v.([16]byte); ok {
				v = uuid.UUID(b).String()
			}
			row[string(fd.Name)] = v
		}
		results = append(results, row)
	}
	if results == nil {
		results = []map[string]interface{}{}
	}
	return results, rows.Err()
}

func (s *storePG) SaveReport(ctx context.Context, r *Report) error {
	r.ID = uuid.New()
	var filters []byte
	if r.FiltersApplied != nil {
		var err error
		if filters, err = json.Marshal(r.FiltersApplied); err != nil {
			return err
		}
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO reports (id, type, generated_by, filters_applied, data_summary)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		r.ID, r.Type, r.GeneratedBy, filters, r.DataSummary).Scan(&r.CreatedAt)
}

func (s *storePG) ListReports(ctx context.Context, limit int) ([]*Report, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, generated_by, filters_applied, data_summary, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		var r Report
		var filters []byte
		if err := rows.Scan(&r.ID, &r.Type, &r.GeneratedBy, &filters, &r.DataSummary, &r.CreatedAt); err != nil {
			return nil, err
		}
		if len(filters) > 0 {
			if err := json.Unmarshal(filters, &r.FiltersApplied); err != nil {
				return nil, err
			}
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}
