package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Single-bill reads are open to any authenticated caller.
	api.GET("/billing/:id", h.GetBill)

	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	staff.GET("/billing", h.ListBills)
	staff.POST("/billing", h.CreateBill)
	staff.PUT("/billing/:id", h.UpdateBill)
	staff.GET("/billing/:id/details", h.GetBillDetails)
	staff.GET("/billing/appointment/:id", h.GetAppointmentBills)
	staff.GET("/insurance", h.ListInsurance)
	staff.GET("/insurance/:id", h.GetInsurance)
	staff.GET("/insurance/:id/bills", h.GetInsuranceBills)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/insurance", h.CreateInsurance)
}

func (h *Handler) ListBills(c echo.Context) error {
	pg := pagination.FromContext(c)
	bills, total, err := h.svc.ListBills(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bills, total, pg))
}

func (h *Handler) GetBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "bill not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) GetBillDetails(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetBillDetails(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "bill not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateBill(c echo.Context) error {
	var req CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.CreateBill(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrInsuranceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrBillExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.UpdateBill(c.Request().Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBillNotFound), errors.Is(err, ErrInsuranceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) GetAppointmentBills(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.BillsForAppointment(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) ListInsurance(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListInsurance(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) GetInsurance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ins, err := h.svc.GetInsurance(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "insurance not found")
	}
	return c.JSON(http.StatusOK, ins)
}

func (h *Handler) CreateInsurance(c echo.Context) error {
	var ins Insurance
	if err := c.Bind(&ins); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.CreateInsurance(c.Request().Context(), &ins)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetInsuranceBills(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.BillsForInsurance(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrInsuranceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}
