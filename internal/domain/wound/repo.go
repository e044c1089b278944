package wound

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, w *Wound) error
	GetByID(ctx context.Context, id uuid.UUID) (*Wound, error)
	Update(ctx context.Context, w *Wound) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Wound, int, error)
}

// AssessmentCounter reports how many assessments exist for a wound. Satisfied
// by the assessment repository; kept as a local interface so this package does
// not import it.
type AssessmentCounter interface {
	CountByWound(ctx context.Context, woundID uuid.UUID) (int, error)
}
