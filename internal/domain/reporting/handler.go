package reporting

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	staff.GET("/reports/appointments", h.AppointmentReport)
	staff.GET("/reports/inventory", h.InventoryReport)
	staff.GET("/reports/patients/summary", h.PatientSummaryReport)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/reports/financial", h.FinancialReport)
	admin.GET("/reports/doctors/performance", h.DoctorPerformanceReport)
	admin.POST("/reports/custom", h.CustomReport)
	admin.GET("/reports/history", h.History)
}

func optParam(c echo.Context, name string) *string {
	if v := c.QueryParam(name); v != "" {
		return &v
	}
	return nil
}

func (h *Handler) AppointmentReport(c echo.Context) error {
	f := AppointmentFilters{
		StartDate: optParam(c, "start_date"),
		EndDate:   optParam(c, "end_date"),
		Status:    optParam(c, "status"),
	}
	report, err := h.svc.AppointmentReport(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) FinancialReport(c echo.Context) error {
	f := FinancialFilters{
		StartDate:     optParam(c, "start_date"),
		EndDate:       optParam(c, "end_date"),
		PaymentStatus: optParam(c, "payment_status"),
	}
	report, err := h.svc.FinancialReport(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) InventoryReport(c echo.Context) error {
	f := InventoryFilters{
		Category:     optParam(c, "category"),
		LowStockOnly: c.QueryParam("low_stock_only") == "true",
	}
	report, err := h.svc.InventoryReport(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) PatientSummaryReport(c echo.Context) error {
	report, err := h.svc.PatientSummaryReport(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) DoctorPerformanceReport(c echo.Context) error {
	f := DateRangeFilters{
		StartDate: optParam(c, "start_date"),
		EndDate:   optParam(c, "end_date"),
	}
	report, err := h.svc.DoctorPerformanceReport(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) CustomReport(c echo.Context) error {
	var req CustomReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	report, err := h.svc.CustomReport(ctx, auth.UserIDFromContext(ctx), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) History(c echo.Context) error {
	history, err := h.svc.History(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, history)
}
