package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddLine persists a billing line after the authoritative credential check.
// The UI greys out restricted codes, but that is advisory: the line is gated
// here against the credential carried by the caller's token, never against
// anything the client sends.
func (s *Service) AddLine(ctx context.Context, l *VisitBillingLine, credential string) error {
	if l.VisitID == uuid.Nil {
		return fmt.Errorf("visit_id is required")
	}
	if l.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if l.BilledByID == uuid.Nil {
		return fmt.Errorf("billed_by_id is required")
	}
	if err := CheckCode(l.Code, credential); err != nil {
		return err
	}
	if l.Units <= 0 {
		l.Units = 1
	}
	p, _ := Lookup(l.Code)
	l.Description = p.Description
	l.BilledByCred = credential
	return s.repo.Create(ctx, l)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*VisitBillingLine, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByVisit(ctx context.Context, visitID uuid.UUID, limit, offset int) ([]*VisitBillingLine, int, error) {
	return s.repo.ListByVisit(ctx, visitID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VisitBillingLine, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// CodesFor splits the catalogue by what the credential may bill. Both halves
// are returned so restricted codes can be shown greyed out.
func CodesFor(credential string) (allowed, restricted []ProcedureCode) {
	return AllowedCodes(credential), RestrictedCodes(credential)
}
