package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/woundcare/woundcare/internal/autosave"
	"github.com/woundcare/woundcare/internal/platform/auth"
	"github.com/woundcare/woundcare/pkg/pagination"
)

// Policy is the server-owned autosave pacing. The server is the single source
// of these intervals: documentation sessions build their coordinator options
// from it, and clients fetch it so their local timers match.
type Policy struct {
	AutosaveInterval    time.Duration
	RemoteDraftInterval time.Duration
	SnapshotFreshness   time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.AutosaveInterval <= 0 {
		p.AutosaveInterval = autosave.DefaultInterval
	}
	if p.RemoteDraftInterval < p.AutosaveInterval {
		p.RemoteDraftInterval = 4 * p.AutosaveInterval
	}
	if p.SnapshotFreshness <= 0 {
		p.SnapshotFreshness = autosave.DefaultFreshness
	}
	return p
}

func (p Policy) sessionOptions() autosave.Options {
	return autosave.Options{Interval: p.AutosaveInterval, Freshness: p.SnapshotFreshness}
}

type Handler struct {
	svc    *Service
	store  autosave.Store
	policy Policy
}

func NewHandler(svc *Service, store autosave.Store, policy Policy) *Handler {
	return &Handler{svc: svc, store: store, policy: policy.withDefaults()}
}

// OpenSession starts a documentation session for one clinician, autosaving on
// the server's configured pacing.
func (h *Handler) OpenSession(userID string) *Session {
	return NewSession(userID, h.store, h.policy.sessionOptions(), h.svc.DepthRatio())
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – admin, physician, nurse
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.GET("/wound-assessments", h.List)
	readGroup.GET("/wound-assessments/:id", h.Get)
	readGroup.POST("/wound-assessments/validate-draft", h.ValidateDraft)
	readGroup.GET("/wound-assessments/drafts/:woundId", h.GetDraft)
	readGroup.GET("/wound-assessments/autosave-policy", h.AutosavePolicy)

	// Write endpoints – admin, nurse
	writeGroup := api.Group("", auth.RequireRole("admin", "nurse"))
	writeGroup.POST("/wound-assessments", h.Create)
	writeGroup.POST("/wound-assessments/batch", h.SubmitBatch)
	writeGroup.PUT("/wound-assessments/:id", h.Update)
	writeGroup.DELETE("/wound-assessments/:id", h.Delete)
	writeGroup.PUT("/wound-assessments/drafts/:woundId", h.SaveDraft)
	writeGroup.DELETE("/wound-assessments/drafts/:woundId", h.DeleteDraft)
}

// -- Assessment Handlers --

func (h *Handler) Create(c echo.Context) error {
	var a Assessment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if a.AssessedByID == uuid.Nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
			a.AssessedByID = uid
		}
	}
	if err := h.svc.Create(ctx, &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.clearDraft(c, a.WoundID.String())
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	return c.JSON(http.StatusOK, a)
}

// List filters by exactly one of wound_id, visit_id, or patient_id.
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	type lister func(id uuid.UUID) ([]*Assessment, int, error)
	filters := []struct {
		param string
		list  lister
	}{
		{"wound_id", func(id uuid.UUID) ([]*Assessment, int, error) {
			return h.svc.ListByWound(ctx, id, pg.Limit, pg.Offset)
		}},
		{"visit_id", func(id uuid.UUID) ([]*Assessment, int, error) {
			return h.svc.ListByVisit(ctx, id, pg.Limit, pg.Offset)
		}},
		{"patient_id", func(id uuid.UUID) ([]*Assessment, int, error) {
			return h.svc.ListByPatient(ctx, id, pg.Limit, pg.Offset)
		}},
	}
	for _, f := range filters {
		raw := c.QueryParam(f.param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid "+f.param)
		}
		items, total, err := f.list(id)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "one of wound_id, visit_id, patient_id is required")
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a Assessment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.Update(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
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

// SubmitBatch persists several wounds' assessments in one call. On failure the
// response reports how far the batch got alongside the error.
func (h *Handler) SubmitBatch(c echo.Context) error {
	var items []*Assessment
	if err := c.Bind(&items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch is empty")
	}
	ctx := c.Request().Context()
	result, err := h.svc.SubmitBatch(ctx, items)
	for _, id := range result.SubmittedIDs {
		for _, a := range items {
			if a.ID == id {
				h.clearDraft(c, a.WoundID.String())
			}
		}
	}
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  err.Error(),
			"result": result,
		})
	}
	return c.JSON(http.StatusCreated, result)
}

// ValidateDraft runs the advisory rules against a draft without persisting
// anything. Clients use it to mirror the server's gate while the form is open.
func (h *Handler) ValidateDraft(c echo.Context) error {
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, EvaluateDraft(&d, h.svc.DepthRatio()))
}

// AutosavePolicy tells clients how often to write local snapshots and remote
// drafts, and how old a snapshot may be before recovery stops offering it.
func (h *Handler) AutosavePolicy(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{
		"autosave_interval_seconds":     int(h.policy.AutosaveInterval / time.Second),
		"remote_draft_interval_seconds": int(h.policy.RemoteDraftInterval / time.Second),
		"snapshot_freshness_minutes":    int(h.policy.SnapshotFreshness / time.Minute),
	})
}

// -- Draft Snapshot Handlers --

func (h *Handler) draftKey(c echo.Context) (autosave.Key, error) {
	woundID := c.Param("woundId")
	userID := auth.UserIDFromContext(c.Request().Context())
	key := SnapshotKey(woundID, userID)
	if err := key.Validate(); err != nil {
		return autosave.Key{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return key, nil
}

func (h *Handler) SaveDraft(c echo.Context) error {
	key, err := h.draftKey(c)
	if err != nil {
		return err
	}
	var payload json.RawMessage
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	snap := &autosave.Snapshot{Key: key, Payload: payload, SavedAt: time.Now()}
	if err := h.store.Write(c.Request().Context(), snap); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"saved_at": snap.SavedAt})
}

// GetDraft returns the caller's snapshot for a wound. A stale snapshot is
// treated as absent: it stays in the store but is never offered for recovery.
func (h *Handler) GetDraft(c echo.Context) error {
	key, err := h.draftKey(c)
	if err != nil {
		return err
	}
	snap, err := h.store.Read(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, autosave.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no draft found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !snap.Fresh(time.Now(), h.policy.SnapshotFreshness) {
		return echo.NewHTTPError(http.StatusNotFound, "no draft found")
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) DeleteDraft(c echo.Context) error {
	key, err := h.draftKey(c)
	if err != nil {
		return err
	}
	if err := h.store.Delete(c.Request().Context(), key); err != nil && !errors.Is(err, autosave.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// clearDraft removes the caller's snapshot after a successful submission.
// Best effort: the record is already persisted, a leftover snapshot only
// costs one stale-check on the next mount.
func (h *Handler) clearDraft(c echo.Context, woundID string) {
	userID := auth.UserIDFromContext(c.Request().Context())
	if userID == "" || woundID == "" {
		return
	}
	_ = h.store.Delete(c.Request().Context(), SnapshotKey(woundID, userID))
}
