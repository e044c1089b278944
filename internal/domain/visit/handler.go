package visit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/woundcare/woundcare/internal/platform/auth"
	"github.com/woundcare/woundcare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.GET("/visits", h.List)
	readGroup.GET("/visits/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole("admin", "nurse"))
	writeGroup.POST("/visits", h.Create)
	writeGroup.PUT("/visits/:id", h.Update)
	writeGroup.DELETE("/visits/:id", h.Delete)

	// Finalizing is a physician-level action.
	finalizeGroup := api.Group("", auth.RequireRole("admin", "physician"))
	finalizeGroup.POST("/visits/:id/finalize", h.Finalize)
}

func (h *Handler) Create(c echo.Context) error {
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "visit not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) List(c echo.Context) error {
	raw := c.QueryParam("patient_id")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	patientID, err := uuid.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.ID = id
	if err := h.svc.Update(c.Request().Context(), &v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Finalize(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "caller identity required")
	}
	v, err := h.svc.Finalize(ctx, id, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
