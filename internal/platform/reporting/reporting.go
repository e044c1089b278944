package reporting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/woundcare/woundcare/internal/platform/auth"
)

// MeasureDefinition defines a reporting measure with its SQL query.
type MeasureDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
}

// PredefinedMeasures is the list of available reporting measures.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "wound-count-by-type",
		Name:        "Wound Count by Type",
		Description: "Latest assessed wound type across all documented wounds",
		SQL: `SELECT wound_type, COUNT(DISTINCT wound_id) AS total
			FROM wound_assessment GROUP BY wound_type ORDER BY total DESC`,
	},
	{
		ID:          "healing-status-distribution",
		Name:        "Healing Status Distribution",
		Description: "Number of assessments per healing status",
		SQL: `SELECT healing_status, COUNT(*) AS total
			FROM wound_assessment GROUP BY healing_status ORDER BY total DESC`,
	},
	{
		ID:          "assessment-volume-by-day",
		Name:        "Assessment Volume by Day",
		Description: "Assessments recorded per day over the last 30 days",
		SQL: `SELECT DATE(assessed_at) AS day, COUNT(*) AS total
			FROM wound_assessment WHERE assessed_at > NOW() - INTERVAL '30 days'
			GROUP BY DATE(assessed_at) ORDER BY day`,
	},
	{
		ID:          "billing-by-credential",
		Name:        "Billing Lines by Credential",
		Description: "Billed procedure volume grouped by the biller's credential",
		SQL: `SELECT billed_by_credential, COUNT(*) AS lines, SUM(units) AS units
			FROM visit_billing_line GROUP BY billed_by_credential ORDER BY lines DESC`,
	},
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	reportGroup := api.Group("/reports", auth.RequireRole("admin", "physician"))
	reportGroup.GET("/measures", h.ListMeasures)
	reportGroup.GET("/measures/:id/evaluate", h.EvaluateMeasure)
	reportGroup.GET("/worklist.xlsx", h.ExportWorklist)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}

	return c.JSON(http.StatusOK, MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
	})
}

// executeSQL runs a SQL query and returns results as a slice of maps.
func (h *Handler) executeSQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql)
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
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}
	if results == nil {
		results = []map[string]interface{}{}
	}
	return results, rows.Err()
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}
