package wound

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

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

func (s *Service) Create(ctx context.Context, w *Wound) error {
	if w.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if w.Location == "" {
		return fmt.Errorf("location is required")
	}
	if w.Status == "" {
		w.Status = "Active"
	}
	if !isValidChoice(w.Status, WoundStatuses) {
		return fmt.Errorf("invalid status: %s", w.Status)
	}
	if w.Laterality != nil && !isValidChoice(*w.Laterality, Lateralities) {
		return fmt.Errorf("invalid laterality: %s", *w.Laterality)
	}
	return s.repo.Create(ctx, w)
}

// Get loads a wound and annotates whether it has any assessments yet, which
// clients use to decide if location confirmation is required.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Wound, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.assessments != nil {
		n, err := s.assessments.CountByWound(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("count assessments: %w", err)
		}
		w.HasAssessments = n > 0
	}
	return w, nil
}

func (s *Service) Update(ctx context.Context, w *Wound) error {
	existing, err := s.repo.GetByID(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("load wound: %w", err)
	}
	if w.PatientID != uuid.Nil && w.PatientID != existing.PatientID {
		return fmt.Errorf("patient_id cannot be changed on an existing wound")
	}
	w.PatientID = existing.PatientID
	if w.Location == "" {
		return fmt.Errorf("location is required")
	}
	if !isValidChoice(w.Status, WoundStatuses) {
		return fmt.Errorf("invalid status: %s", w.Status)
	}
	return s.repo.Update(ctx, w)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Wound, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
