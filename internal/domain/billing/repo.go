package billing

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists visit billing lines.
type Repository interface {
	Create(ctx context.Context, l *VisitBillingLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*VisitBillingLine, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVisit(ctx context.Context, visitID uuid.UUID, limit, offset int) ([]*VisitBillingLine, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VisitBillingLine, int, error)
}
