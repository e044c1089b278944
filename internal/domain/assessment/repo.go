package assessment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	Update(ctx context.Context, a *Assessment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByWound(ctx context.Context, woundID uuid.UUID, limit, offset int) ([]*Assessment, int, error)
	ListByVisit(ctx context.Context, visitID uuid.UUID, limit, offset int) ([]*Assessment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assessment, int, error)
	CountByWound(ctx context.Context, woundID uuid.UUID) (int, error)
	CountByVisit(ctx context.Context, visitID uuid.UUID) (int, error)
}
