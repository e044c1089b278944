package wound

import (
	"time"

	"github.com/google/uuid"
)

// Wound maps to the wound table: one tracked wound on a patient's body.
type Wound struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	Location   string     `db:"location" json:"location"`
	Laterality *string    `db:"laterality" json:"laterality,omitempty"`
	OnsetDate  *time.Time `db:"onset_date" json:"onset_date,omitempty"`
	Status     string     `db:"status" json:"status"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`

	// HasAssessments is derived, not stored. It drives the first-assessment
	// location confirmation on the client.
	HasAssessments bool `db:"-" json:"has_assessments"`
}

// WoundStatuses is the fixed lifecycle catalogue.
var WoundStatuses = []string{"Active", "Healed", "Closed"}

// Lateralities for paired body sites.
var Lateralities = []string{"Left", "Right", "Bilateral", "Midline"}
