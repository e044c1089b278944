package assessment

import (
	"fmt"
	"math"
	"strconv"
)

// The validation engine. Every function here is pure and O(1): these run on
// each keystroke client-side and again server-side before a record is
// persisted, so they return structured results and never panic.

// WoundTypePressureInjury is the category that requires a pressure stage.
const WoundTypePressureInjury = "Pressure Injury"

// WoundTypes is the fixed catalogue of wound categories.
var WoundTypes = []string{
	WoundTypePressureInjury,
	"Venous Ulcer",
	"Arterial Ulcer",
	"Diabetic Ulcer",
	"Surgical Wound",
	"Traumatic Wound",
	"Skin Tear",
	"Moisture-Associated Damage",
	"Burn",
	"Other",
}

// PressureStages per NPIAP staging.
var PressureStages = []string{
	"Stage 1", "Stage 2", "Stage 3", "Stage 4",
	"Unstageable", "Deep Tissue Injury",
}

// HealingStatuses is the fixed catalogue of healing trajectories.
var HealingStatuses = []string{"New", "Healing", "Stalled", "Declining", "Resolved"}

// InfectionSigns is the fixed catalogue of observable infection indicators.
var InfectionSigns = []string{
	"Erythema", "Warmth", "Swelling", "Purulent Drainage",
	"Increased Pain", "Malodor", "Fever", "Induration",
}

// DefaultDepthWarningRatio flags depth greater than twice the smaller surface
// dimension. The exact threshold is a data-entry heuristic, not a clinical
// rule, so callers may override it.
const DefaultDepthWarningRatio = 2.0

// Result is the outcome of a blocking validation rule.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// MeasurementResult is the outcome of the measurement proportion check. It
// can carry a warning but never blocks submission.
type MeasurementResult struct {
	Valid   bool   `json:"valid"`
	Warning string `json:"warning,omitempty"`
}

// TissueTotal returns the arithmetic sum of the tissue-composition triple.
func TissueTotal(epithelial, granulation, slough int) int {
	return epithelial + granulation + slough
}

// ValidateTissueComposition checks that the tissue percentages account for
// the whole wound bed. A total of exactly 0 means "not yet entered" and is
// valid; any other total must be exactly 100. The error states the actual
// total so the user can correct it.
func ValidateTissueComposition(epithelial, granulation, slough int) Result {
	for _, p := range []int{epithelial, granulation, slough} {
		if p < 0 || p > 100 {
			return Result{Error: fmt.Sprintf("tissue percentages must be between 0 and 100, got %d", p)}
		}
	}
	total := TissueTotal(epithelial, granulation, slough)
	if total == 0 || total == 100 {
		return Result{Valid: true}
	}
	return Result{Error: fmt.Sprintf("tissue composition must total 100%%, currently %d%%", total)}
}

// ValidateMeasurements flags a depth that is disproportionate to the wound's
// footprint — usually a millimeters-for-centimeters entry mistake. It is only
// evaluated when all three measurements are positive, and it warns without
// ever blocking submission.
func ValidateMeasurements(length, width, depth, ratio float64) MeasurementResult {
	if ratio <= 0 {
		ratio = DefaultDepthWarningRatio
	}
	if length <= 0 || width <= 0 || depth <= 0 {
		return MeasurementResult{Valid: true}
	}
	if depth > ratio*math.Min(length, width) {
		return MeasurementResult{
			Valid: true,
			Warning: fmt.Sprintf(
				"depth %.1f cm is unusually large for a %.1f x %.1f cm wound; verify the unit of measurement",
				depth, length, width),
		}
	}
	return MeasurementResult{Valid: true}
}

// RequiresPressureStage reports whether the wound type mandates a pressure
// stage. Drives both field visibility and the required-field rule.
func RequiresPressureStage(woundType string) bool {
	return woundType == WoundTypePressureInjury
}

// ValidateLocationConfirmation gates the very first assessment of a wound:
// the clinician must confirm the documented location before submitting.
// Subsequent assessments of an already-documented wound always pass.
func ValidateLocationConfirmation(isFirstAssessment, locationConfirmed bool) Result {
	if isFirstAssessment && !locationConfirmed {
		return Result{Error: "confirm the wound location before submitting the first assessment"}
	}
	return Result{Valid: true}
}

// Area derives the wound surface area in cm², rounded to two decimals.
func Area(length, width float64) float64 {
	return math.Round(length*width*100) / 100
}

// ToggleSign flips membership of a sign in the infection-sign set, preserving
// insertion order for display. No duplicates are possible.
func ToggleSign(signs []string, sign string) []string {
	for i, s := range signs {
		if s == sign {
			return append(signs[:i:i], signs[i+1:]...)
		}
	}
	return append(signs, sign)
}

// parseMeasurement converts an as-entered measurement. Empty or partially
// typed values parse as absent.
func parseMeasurement(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// DraftValidation is the full advisory evaluation of a draft, recomputed on
// every change.
type DraftValidation struct {
	CanSubmit            bool              `json:"can_submit"`
	TissueTotal          int               `json:"tissue_total"`
	TissueComposition    Result            `json:"tissue_composition"`
	LocationConfirmation Result            `json:"location_confirmation"`
	Measurements         MeasurementResult `json:"measurements"`
	MissingFields        []string          `json:"missing_fields,omitempty"`
}

// EvaluateDraft runs every rule against the draft. The composite gate
// (CanSubmit) is advisory: the service re-runs the same rules on submission.
func EvaluateDraft(d *Draft, depthRatio float64) DraftValidation {
	v := DraftValidation{
		TissueTotal:          TissueTotal(d.EpithelialPercent, d.GranulationPercent, d.SloughPercent),
		TissueComposition:    ValidateTissueComposition(d.EpithelialPercent, d.GranulationPercent, d.SloughPercent),
		LocationConfirmation: ValidateLocationConfirmation(d.IsFirstAssessment, d.LocationConfirmed),
	}

	length, hasLength := parseMeasurement(d.Length)
	width, hasWidth := parseMeasurement(d.Width)
	depth, hasDepth := parseMeasurement(d.Depth)
	if hasLength && hasWidth && hasDepth {
		v.Measurements = ValidateMeasurements(length, width, depth, depthRatio)
	} else {
		v.Measurements = MeasurementResult{Valid: true}
	}

	if d.WoundID == "" {
		v.MissingFields = append(v.MissingFields, "wound_id")
	}
	if d.WoundType == "" {
		v.MissingFields = append(v.MissingFields, "wound_type")
	}
	if d.HealingStatus == "" {
		v.MissingFields = append(v.MissingFields, "healing_status")
	}
	if d.Length == "" {
		v.MissingFields = append(v.MissingFields, "length")
	}
	if d.Width == "" {
		v.MissingFields = append(v.MissingFields, "width")
	}
	if RequiresPressureStage(d.WoundType) && d.PressureStage == "" {
		v.MissingFields = append(v.MissingFields, "pressure_stage")
	}

	v.CanSubmit = v.TissueComposition.Valid &&
		v.LocationConfirmation.Valid &&
		len(v.MissingFields) == 0
	return v
}

// CanSubmit is the composite gate: true iff every blocking rule passes.
func CanSubmit(d *Draft) bool {
	return EvaluateDraft(d, DefaultDepthWarningRatio).CanSubmit
}
