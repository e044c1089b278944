package visit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error)
}
