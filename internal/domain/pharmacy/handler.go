package pharmacy

import (
	"errors"
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
	pharmacist := api.Group("", auth.RequireRole(auth.RolePharmacist))
	pharmacist.POST("/pharmacy/dispense", h.Dispense)

	review := api.Group("", auth.RequireRole(auth.RolePharmacist, auth.RoleDoctor))
	review.GET("/pharmacy/prescriptions/pending", h.ListPending)

	dashboard := api.Group("", auth.RequireRole(auth.RolePharmacist, auth.RoleAdmin))
	dashboard.GET("/pharmacy/dashboard", h.Dashboard)
}

func (h *Handler) Dispense(c echo.Context) error {
	var req DispenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	result, err := h.svc.Dispense(ctx, auth.UserIDFromContext(ctx), req.RecordID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPrescriptionNotFound), errors.Is(err, ErrItemNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListPending(c echo.Context) error {
	pending, err := h.svc.ListPending(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pending)
}

func (h *Handler) Dashboard(c echo.Context) error {
	summary, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
