package billing

import (
	"time"

	"github.com/google/uuid"
)

// ProcedureCode is one entry in the fixed billing catalogue. MinCredential is
// the lowest clinical credential allowed to bill the code.
type ProcedureCode struct {
	Code          string `json:"code"`
	Description   string `json:"description"`
	MinCredential string `json:"min_credential"`
}

// VisitBillingLine maps to the visit_billing_line table: one procedure code
// attached to a visit by a credentialed clinician.
type VisitBillingLine struct {
	ID           uuid.UUID `db:"id" json:"id"`
	VisitID      uuid.UUID `db:"visit_id" json:"visit_id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	Code         string    `db:"code" json:"code"`
	Description  string    `db:"description" json:"description"`
	Units        int       `db:"units" json:"units"`
	BilledByID   uuid.UUID `db:"billed_by_id" json:"billed_by_id"`
	BilledByCred string    `db:"billed_by_credential" json:"billed_by_credential"`
	Note         *string   `db:"note" json:"note,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
