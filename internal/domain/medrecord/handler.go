package medrecord

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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
	clinical := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RolePatient, auth.RoleNurse))
	clinical.GET("/records/:id", h.GetRecord)
	clinical.GET("/records/patient/:id", h.ListPatientRecords)

	author := api.Group("", auth.RequireRole(auth.RoleDoctor))
	author.POST("/records", h.CreateRecord)
	author.PUT("/records/:id", h.UpdateRecord)
	author.GET("/records/:id/pdf", h.ExportPDF)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var req CreateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	rec, err := h.svc.Create(ctx, auth.UserIDFromContext(ctx), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoDoctorProfile):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrPatientNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListPatientRecords(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	records, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	var req UpdateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	rec, err := h.svc.Update(ctx, c.Param("id"), auth.UserIDFromContext(ctx), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNoDoctorProfile), errors.Is(err, ErrNotAuthor):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, rec)
}

// ExportPDF is a placeholder; record export ships without a renderer for now.
func (h *Handler) ExportPDF(c echo.Context) error {
	if _, err := h.svc.Get(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusNotImplemented, "PDF export not implemented yet")
}
