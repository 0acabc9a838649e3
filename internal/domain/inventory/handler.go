package inventory

import (
	"errors"
	"net/http"
	"strconv"

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
	// Stock reads are open to any authenticated caller.
	api.GET("/inventory", h.ListItems)
	api.GET("/inventory/:id", h.GetItem)
	api.GET("/inventory/category/:category", h.GetCategory)
	api.GET("/inventory/stats/summary", h.GetStats)
	api.GET("/inventory/low-stock/alert", h.GetLowStock)

	stock := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RolePharmacist))
	stock.POST("/inventory", h.CreateItem)
	stock.PUT("/inventory/:id", h.UpdateItem)
	stock.PATCH("/inventory/:id/adjust-quantity", h.AdjustQuantity)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.DELETE("/inventory/:id", h.DeleteItem)
}

func (h *Handler) ListItems(c echo.Context) error {
	var f ListFilter
	if cat := c.QueryParam("category"); cat != "" {
		f.Category = &cat
	}
	f.LowStockOnly = c.QueryParam("low_stock_only") == "true"

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) GetItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "inventory item not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateItem(c echo.Context) error {
	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrItemExists) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.Update(c.Request().Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrItemNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrItemExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) AdjustQuantity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	delta, err := strconv.Atoi(c.QueryParam("adjustment"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "adjustment must be an integer")
	}
	result, err := h.svc.AdjustQuantity(c.Request().Context(), id, delta)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "inventory item not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetCategory(c echo.Context) error {
	view, err := h.svc.CategoryView(c.Request().Context(), c.Param("category"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetLowStock(c echo.Context) error {
	items, err := h.svc.LowStock(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
