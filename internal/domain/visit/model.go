package visit

import (
	"time"

	"github.com/google/uuid"
)

// Visit statuses form a one-way lifecycle: a finalized visit never reopens.
const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "In Progress"
	StatusFinalized  = "Finalized"
	StatusCancelled  = "Cancelled"
)

var VisitStatuses = []string{StatusScheduled, StatusInProgress, StatusFinalized, StatusCancelled}

// VisitTypes is the fixed catalogue of encounter kinds.
var VisitTypes = []string{"Initial Evaluation", "Follow-Up", "Dressing Change", "Telehealth"}

// Visit maps to the visit table.
type Visit struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	VisitType     string     `db:"visit_type" json:"visit_type"`
	Status        string     `db:"status" json:"status"`
	VisitDate     time.Time  `db:"visit_date" json:"visit_date"`
	FinalizedAt   *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	FinalizedByID *uuid.UUID `db:"finalized_by_id" json:"finalized_by_id,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
