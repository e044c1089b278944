package reporting

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

// WorklistRow is one line of the clinician worklist export: an active wound
// with its most recent assessment.
type WorklistRow struct {
	PatientName   string
	MRN           string
	WoundLocation string
	WoundType     string
	HealingStatus string
	AreaCM2       float64
	LastAssessed  time.Time
}

var worklistHeaders = []string{
	"Patient", "MRN", "Location", "Wound Type", "Healing Status", "Area (cm2)", "Last Assessed",
}

// BuildWorklist renders rows into a spreadsheet. Pure over its input, so it is
// testable without a database.
func BuildWorklist(rows []WorklistRow) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Worklist"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range worklistHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.PatientName, row.MRN, row.WoundLocation, row.WoundType,
			row.HealingStatus, row.AreaCM2, row.LastAssessed.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

const worklistSQL = `
	SELECT p.last_name || ', ' || p.first_name AS patient_name, p.mrn,
		w.location, a.wound_type, a.healing_status, a.area_cm2, a.assessed_at
	FROM wound w
	JOIN patient p ON p.id = w.patient_id
	JOIN LATERAL (
		SELECT wound_type, healing_status, area_cm2, assessed_at
		FROM wound_assessment WHERE wound_id = w.id
		ORDER BY assessed_at DESC LIMIT 1
	) a ON true
	WHERE w.status = 'Active'
	ORDER BY a.assessed_at`

// ExportWorklist streams the active-wound worklist as an xlsx download.
func (h *Handler) ExportWorklist(c echo.Context) error {
	ctx := c.Request().Context()
	dbRows, err := h.pool.Query(ctx, worklistSQL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}
	defer dbRows.Close()

	var rows []WorklistRow
	for dbRows.Next() {
		var r WorklistRow
		if err := dbRows.Scan(&r.PatientName, &r.MRN, &r.WoundLocation, &r.WoundType,
			&r.HealingStatus, &r.AreaCM2, &r.LastAssessed); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		rows = append(rows, r)
	}
	if err := dbRows.Err(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	f, err := BuildWorklist(rows)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="worklist.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}
