package assessment

import (
	"time"

	"github.com/google/uuid"
)

// Assessment maps to the wound_assessment table. Measurements are in
// centimeters; AreaCM2 is derived from length and width at submission time.
type Assessment struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	WoundID            uuid.UUID  `db:"wound_id" json:"wound_id"`
	VisitID            uuid.UUID  `db:"visit_id" json:"visit_id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	AssessedByID       uuid.UUID  `db:"assessed_by_id" json:"assessed_by_id"`
	WoundType          string     `db:"wound_type" json:"wound_type"`
	PressureStage      *string    `db:"pressure_stage" json:"pressure_stage,omitempty"`
	HealingStatus      string     `db:"healing_status" json:"healing_status"`
	LengthCM           float64    `db:"length_cm" json:"length_cm"`
	WidthCM            float64    `db:"width_cm" json:"width_cm"`
	DepthCM            *float64   `db:"depth_cm" json:"depth_cm,omitempty"`
	AreaCM2            float64    `db:"area_cm2" json:"area_cm2"`
	EpithelialPercent  int        `db:"epithelial_percent" json:"epithelial_percent"`
	GranulationPercent int        `db:"granulation_percent" json:"granulation_percent"`
	SloughPercent      int        `db:"slough_percent" json:"slough_percent"`
	ExudateAmount      *string    `db:"exudate_amount" json:"exudate_amount,omitempty"`
	ExudateType        *string    `db:"exudate_type" json:"exudate_type,omitempty"`
	Odor               *string    `db:"odor" json:"odor,omitempty"`
	InfectionSigns     []string   `db:"infection_signs" json:"infection_signs,omitempty"`
	PainLevel          *int       `db:"pain_level" json:"pain_level,omitempty"`
	AssessmentNotes    *string    `db:"assessment_notes" json:"assessment_notes,omitempty"`
	Undermining        *string    `db:"undermining" json:"undermining,omitempty"`
	Tunneling          *string    `db:"tunneling" json:"tunneling,omitempty"`
	PeriwoundCondition *string    `db:"periwound_condition" json:"periwound_condition,omitempty"`
	LocationConfirmed  bool       `db:"location_confirmed" json:"location_confirmed"`
	AssessedAt         time.Time  `db:"assessed_at" json:"assessed_at"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Draft is the client-held, not-yet-submitted form state for one wound.
// Measurement fields stay strings exactly as entered; the validation engine
// parses them so partially typed values (".", "") never crash a keystroke.
type Draft struct {
	WoundID            string   `json:"wound_id"`
	WoundType          string   `json:"wound_type"`
	PressureStage      string   `json:"pressure_stage"`
	HealingStatus      string   `json:"healing_status"`
	Length             string   `json:"length"`
	Width              string   `json:"width"`
	Depth              string   `json:"depth"`
	EpithelialPercent  int      `json:"epithelial_percent"`
	GranulationPercent int      `json:"granulation_percent"`
	SloughPercent      int      `json:"slough_percent"`
	ExudateAmount      string   `json:"exudate_amount"`
	ExudateType        string   `json:"exudate_type"`
	Odor               string   `json:"odor"`
	InfectionSigns     []string `json:"infection_signs"`
	PainLevel          *int     `json:"pain_level,omitempty"`
	AssessmentNotes    string   `json:"assessment_notes"`
	Undermining        string   `json:"undermining"`
	Tunneling          string   `json:"tunneling"`
	PeriwoundCondition string   `json:"periwound_condition"`
	IsFirstAssessment  bool     `json:"is_first_assessment"`
	LocationConfirmed  bool     `json:"location_confirmed"`
}

// HasEnteredData reports whether the draft contains any work worth
// submitting. Used by the multi-wound batch submit to skip untouched forms.
func (d *Draft) HasEnteredData() bool {
	return d.WoundType != "" || d.Length != ""
}
