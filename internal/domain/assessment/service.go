package assessment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Notifier receives events after an assessment is successfully persisted.
// Delivery is fire-and-forget; failures must never surface to the submitter.
type Notifier interface {
	AssessmentSubmitted(ctx context.Context, a *Assessment)
}

type Service struct {
	repo       Repository
	depthRatio float64
	notifier   Notifier
}

func NewService(repo Repository, depthRatio float64) *Service {
	if depthRatio <= 0 {
		depthRatio = DefaultDepthWarningRatio
	}
	return &Service{repo: repo, depthRatio: depthRatio}
}

// SetNotifier attaches an optional submission notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// DepthRatio returns the configured disproportionate-depth threshold.
func (s *Service) DepthRatio() float64 {
	return s.depthRatio
}

// IsFirstAssessment reports whether no prior assessment exists for the wound.
func (s *Service) IsFirstAssessment(ctx context.Context, woundID uuid.UUID) (bool, error) {
	n, err := s.repo.CountByWound(ctx, woundID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Create persists a new assessment. The client's submit gate is advisory
// only, so every rule is re-run here before anything is written.
func (s *Service) Create(ctx context.Context, a *Assessment) error {
	isFirst, err := s.IsFirstAssessment(ctx, a.WoundID)
	if err != nil {
		return fmt.Errorf("check prior assessments: %w", err)
	}
	if err := validateRecord(a, isFirst); err != nil {
		return err
	}
	a.AreaCM2 = Area(a.LengthCM, a.WidthCM)
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.notify(ctx, a)
	return nil
}

func (s *Service) notify(ctx context.Context, a *Assessment) {
	if s.notifier == nil {
		return
	}
	go s.notifier.AssessmentSubmitted(context.WithoutCancel(ctx), a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces an existing assessment's clinical content. The wound
// reference is immutable once set.
func (s *Service) Update(ctx context.Context, a *Assessment) error {
	existing, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("load assessment: %w", err)
	}
	if a.WoundID != uuid.Nil && a.WoundID != existing.WoundID {
		return fmt.Errorf("wound_id cannot be changed on an existing assessment")
	}
	a.WoundID = existing.WoundID
	a.PatientID = existing.PatientID
	a.VisitID = existing.VisitID

	// An update is never the wound's first assessment.
	if err := validateRecord(a, false); err != nil {
		return err
	}
	a.AreaCM2 = Area(a.LengthCM, a.WidthCM)
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByWound(ctx context.Context, woundID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.ListByWound(ctx, woundID, limit, offset)
}

func (s *Service) ListByVisit(ctx context.Context, visitID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.ListByVisit(ctx, visitID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// BatchResult reports the outcome of a multi-wound submission.
type BatchResult struct {
	SubmittedIDs []uuid.UUID `json:"submitted_ids"`
	FailedWound  *uuid.UUID  `json:"failed_wound,omitempty"`
}

// SubmitBatch persists each assessment independently, in order. A failure
// aborts the remaining submissions and names the failing wound; assessments
// already persisted stay persisted — there is no rollback, and the caller is
// told exactly how far the batch got.
func (s *Service) SubmitBatch(ctx context.Context, items []*Assessment) (*BatchResult, error) {
	result := &BatchResult{}
	for _, a := range items {
		if err := s.Create(ctx, a); err != nil {
			wid := a.WoundID
			result.FailedWound = &wid
			return result, fmt.Errorf("wound %s: %w", wid, err)
		}
		result.SubmittedIDs = append(result.SubmittedIDs, a.ID)
	}
	return result, nil
}

func isValidChoice(value string, catalogue []string) bool {
	for _, v := range catalogue {
		if v == value {
			return true
		}
	}
	return false
}

// validateRecord is the authoritative server-side gate. It mirrors the
// client rules exactly and adds catalogue membership checks.
func validateRecord(a *Assessment, isFirst bool) error {
	if a.WoundID == uuid.Nil {
		return fmt.Errorf("wound_id is required")
	}
	if a.VisitID == uuid.Nil {
		return fmt.Errorf("visit_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.AssessedByID == uuid.Nil {
		return fmt.Errorf("assessed_by_id is required")
	}
	if a.WoundType == "" {
		return fmt.Errorf("wound_type is required")
	}
	if !isValidChoice(a.WoundType, WoundTypes) {
		return fmt.Errorf("invalid wound_type: %s", a.WoundType)
	}
	if a.HealingStatus == "" {
		return fmt.Errorf("healing_status is required")
	}
	if !isValidChoice(a.HealingStatus, HealingStatuses) {
		return fmt.Errorf("invalid healing_status: %s", a.HealingStatus)
	}
	if a.LengthCM <= 0 {
		return fmt.Errorf("length_cm must be positive")
	}
	if a.WidthCM <= 0 {
		return fmt.Errorf("width_cm must be positive")
	}
	if a.DepthCM != nil && *a.DepthCM < 0 {
		return fmt.Errorf("depth_cm must not be negative")
	}

	if r := ValidateTissueComposition(a.EpithelialPercent, a.GranulationPercent, a.SloughPercent); !r.Valid {
		return fmt.Errorf("%s", r.Error)
	}

	if RequiresPressureStage(a.WoundType) {
		if a.PressureStage == nil || *a.PressureStage == "" {
			return fmt.Errorf("pressure_stage is required for pressure injuries")
		}
		if !isValidChoice(*a.PressureStage, PressureStages) {
			return fmt.Errorf("invalid pressure_stage: %s", *a.PressureStage)
		}
	} else {
		a.PressureStage = nil
	}

	if r := ValidateLocationConfirmation(isFirst, a.LocationConfirmed); !r.Valid {
		return fmt.Errorf("%s", r.Error)
	}

	if a.PainLevel != nil && (*a.PainLevel < 0 || *a.PainLevel > 10) {
		return fmt.Errorf("pain_level must be between 0 and 10")
	}
	for _, sign := range a.InfectionSigns {
		if !isValidChoice(sign, InfectionSigns) {
			return fmt.Errorf("unknown infection sign: %s", sign)
		}
	}
	return nil
}
