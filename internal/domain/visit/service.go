package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssessmentCounter reports how many assessments were submitted against a
// visit. Satisfied by the assessment repository; defined here to keep this
// package free of a dependency on it.
type AssessmentCounter interface {
	CountByVisit(ctx context.Context, visitID uuid.UUID) (int, error)
}

type Service struct {
	repo        Repository
	assessments AssessmentCounter
}

func NewService(repo Repository, assessments AssessmentCounter) *Service {
	return &Service{repo: repo, assessments: assessments}
}

func isValidChoice(value string, catalogue []string) bool {
	for _, v := range catalogue {
		if v == value {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, v *Visit) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if v.VisitType == "" {
		return fmt.Errorf("visit_type is required")
	}
	if !isValidChoice(v.VisitType, VisitTypes) {
		return fmt.Errorf("invalid visit_type: %s", v.VisitType)
	}
	if v.Status == "" {
		v.Status = StatusScheduled
	}
	if !isValidChoice(v.Status, VisitStatuses) {
		return fmt.Errorf("invalid status: %s", v.Status)
	}
	if v.Status == StatusFinalized {
		return fmt.Errorf("a visit cannot be created already finalized")
	}
	if v.VisitDate.IsZero() {
		v.VisitDate = time.Now()
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, v *Visit) error {
	existing, err := s.repo.GetByID(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("load visit: %w", err)
	}
	if existing.Status == StatusFinalized {
		return fmt.Errorf("finalized visits cannot be modified")
	}
	if v.PatientID != uuid.Nil && v.PatientID != existing.PatientID {
		return fmt.Errorf("patient_id cannot be changed on an existing visit")
	}
	v.PatientID = existing.PatientID
	v.FinalizedAt = existing.FinalizedAt
	v.FinalizedByID = existing.FinalizedByID
	if !isValidChoice(v.Status, VisitStatuses) {
		return fmt.Errorf("invalid status: %s", v.Status)
	}
	if v.Status == StatusFinalized {
		return fmt.Errorf("use finalize to close a visit")
	}
	return s.repo.Update(ctx, v)
}

// Finalize closes out a visit. Only an in-progress visit can be finalized,
// the transition is one-way, and the visit must carry some documentation: at
// least one submitted assessment or a visit note.
func (s *Service) Finalize(ctx context.Context, id, finalizedBy uuid.UUID) (*Visit, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load visit: %w", err)
	}
	switch v.Status {
	case StatusFinalized:
		return nil, fmt.Errorf("visit is already finalized")
	case StatusCancelled:
		return nil, fmt.Errorf("a cancelled visit cannot be finalized")
	case StatusScheduled:
		return nil, fmt.Errorf("visit has not started")
	}
	if !hasNote(v) {
		n := 0
		if s.assessments != nil {
			n, err = s.assessments.CountByVisit(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("count assessments: %w", err)
			}
		}
		if n == 0 {
			return nil, fmt.Errorf("a visit needs at least one submitted assessment or a visit note before it can be finalized")
		}
	}
	now := time.Now()
	v.Status = StatusFinalized
	v.FinalizedAt = &now
	v.FinalizedByID = &finalizedBy
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func hasNote(v *Visit) bool {
	return v.Notes != nil && strings.TrimSpace(*v.Notes) != ""
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v.Status == StatusFinalized {
		return fmt.Errorf("finalized visits cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
