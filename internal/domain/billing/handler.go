package billing

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
	// Read endpoints – admin, physician, nurse
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.GET("/billing-codes", h.ListCodes)
	readGroup.GET("/billing-lines", h.List)
	readGroup.GET("/billing-lines/:id", h.Get)

	// Write endpoints – admin, physician, nurse; the credential gate, not the
	// role, decides which codes each caller may bill.
	writeGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	writeGroup.POST("/billing-lines", h.Create)
	writeGroup.DELETE("/billing-lines/:id", h.Delete)
}

// ListCodes returns the catalogue split by the caller's credential.
func (h *Handler) ListCodes(c echo.Context) error {
	credential := auth.CredentialFromContext(c.Request().Context())
	allowed, restricted := CodesFor(credential)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"credential": credential,
		"allowed":    allowed,
		"restricted": restricted,
	})
}

func (h *Handler) Create(c echo.Context) error {
	var l VisitBillingLine
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if l.BilledByID == uuid.Nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
			l.BilledByID = uid
		}
	}
	credential := auth.CredentialFromContext(ctx)
	if err := h.svc.AddLine(ctx, &l, credential); err != nil {
		if IsRestricted(l.Code, credential) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "billing line not found")
	}
	return c.JSON(http.StatusOK, l)
}

// List filters by visit_id or patient_id.
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if raw := c.QueryParam("visit_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid visit_id")
		}
		items, total, err := h.svc.ListByVisit(ctx, id, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	if raw := c.QueryParam("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(ctx, id, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "one of visit_id, patient_id is required")
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
