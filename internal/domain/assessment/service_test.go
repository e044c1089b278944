package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Assessment
	failOn  uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Assessment)}
}

func (m *mockRepo) Create(_ context.Context, a *Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != uuid.Nil && a.WoundID == m.failOn {
		return fmt.Errorf("constraint violation")
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	cp := *a
	m.records[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.records[a.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *mockRepo) listWhere(match func(*Assessment) bool) ([]*Assessment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Assessment
	for _, a := range m.records {
		if match(a) {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByWound(_ context.Context, woundID uuid.UUID, _, _ int) ([]*Assessment, int, error) {
	return m.listWhere(func(a *Assessment) bool { return a.WoundID == woundID })
}

func (m *mockRepo) ListByVisit(_ context.Context, visitID uuid.UUID, _, _ int) ([]*Assessment, int, error) {
	return m.listWhere(func(a *Assessment) bool { return a.VisitID == visitID })
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*Assessment, int, error) {
	return m.listWhere(func(a *Assessment) bool { return a.PatientID == patientID })
}

func (m *mockRepo) CountByWound(_ context.Context, woundID uuid.UUID) (int, error) {
	_, n, _ := m.listWhere(func(a *Assessment) bool { return a.WoundID == woundID })
	return n, nil
}

func (m *mockRepo) CountByVisit(_ context.Context, visitID uuid.UUID) (int, error) {
	_, n, _ := m.listWhere(func(a *Assessment) bool { return a.VisitID == visitID })
	return n, nil
}

func validAssessment() *Assessment {
	return &Assessment{
		WoundID:            uuid.New(),
		VisitID:            uuid.New(),
		PatientID:          uuid.New(),
		AssessedByID:       uuid.New(),
		WoundType:          "Venous Ulcer",
		HealingStatus:      "Healing",
		LengthCM:           4.5,
		WidthCM:            3.0,
		EpithelialPercent:  30,
		GranulationPercent: 40,
		SloughPercent:      30,
		LocationConfirmed:  true,
	}
}

func TestCreateComputesArea(t *testing.T) {
	svc := NewService(newMockRepo(), 0)
	a := validAssessment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if a.AreaCM2 != 13.50 {
		t.Errorf("area = %v, want 13.50", a.AreaCM2)
	}
}

func TestCreateRejectsTissueMismatch(t *testing.T) {
	svc := NewService(newMockRepo(), 0)
	a := validAssessment()
	a.SloughPercent = 20
	err := svc.Create(context.Background(), a)
	if err == nil {
		t.Fatal("expected tissue composition error")
	}
	if !strings.Contains(err.Error(), "90") {
		t.Errorf("error should state the actual total, got %q", err)
	}
}

func TestCreateRequiresPressureStageForPressureInjury(t *testing.T) {
	svc := NewService(newMockRepo(), 0)
	a := validAssessment()
	a.WoundType = WoundTypePressureInjury
	if err := svc.Create(context.Background(), a); err == nil {
		t.Fatal("expected pressure stage error")
	}

	stage := "Stage 3"
	a.PressureStage = &stage
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("staged pressure injury should persist: %v", err)
	}
}

func TestCreateDropsStageForNonPressureWound(t *testing.T) {
	svc := NewService(newMockRepo(), 0)
	a := validAssessment()
	stage := "Stage 2"
	a.PressureStage = &stage
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if a.PressureStage != nil {
		t.Error("stage should be cleared for non-pressure wound types")
	}
}

func TestCreateFirstAssessmentLocationGate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 0)
	ctx := context.Background()

	a := validAssessment()
	a.LocationConfirmed = false
	err := svc.Create(ctx, a)
	if err == nil {
		t.Fatal("first assessment without location confirmation must be rejected")
	}
	if !strings.Contains(err.Error(), "location") {
		t.Errorf("unexpected error: %v", err)
	}

	// Once a prior assessment exists, confirmation is no longer required.
	a.LocationConfirmed = true
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	followup := validAssessment()
	followup.WoundID = a.WoundID
	followup.LocationConfirmed = false
	if err := svc.Create(ctx, followup); err != nil {
		t.Fatalf("subsequent assessment should not require confirmation: %v", err)
	}
}

func TestIsFirstAssessment(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 0)
	ctx := context.Background()

	a := validAssessment()
	first, err := svc.IsFirstAssessment(ctx, a.WoundID)
	if err != nil || !first {
		t.Fatalf("expected first assessment, got (%v, %v)", first, err)
	}
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	first, err = svc.IsFirstAssessment(ctx, a.WoundID)
	if err != nil || first {
		t.Fatalf("expected not-first after create, got (%v, %v)", first, err)
	}
}

func TestCreateValidatesRangesAndCatalogues(t *testing.T) {
	svc := NewService(newMockRepo(), 0)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Assessment)
	}{
		{"zero length", func(a *Assessment) { a.LengthCM = 0 }},
		{"negative width", func(a *Assessment) { a.WidthCM = -1 }},
		{"unknown wound type", func(a *Assessment) { a.WoundType = "Laceration?" }},
		{"unknown healing status", func(a *Assessment) { a.HealingStatus = "Fine" }},
		{"pain out of range", func(a *Assessment) { p := 11; a.PainLevel = &p }},
		{"unknown infection sign", func(a *Assessment) { a.InfectionSigns = []string{"Glowing"} }},
		{"missing wound", func(a *Assessment) { a.WoundID = uuid.Nil }},
		{"missing assessor", func(a *Assessment) { a.AssessedByID = uuid.Nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAssessment()
			tt.mutate(a)
			if err := svc.Create(ctx, a); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUpdateWoundIDImmutable(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 0)
	ctx := context.Background()

	a := validAssessment()
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	upd := *a
	upd.WoundID = uuid.New()
	if err := svc.Update(ctx, &upd); err == nil {
		t.Fatal("changing wound_id on update must be rejected")
	}

	upd = *a
	upd.HealingStatus = "Stalled"
	if err := svc.Update(ctx, &upd); err != nil {
		t.Fatalf("legitimate update rejected: %v", err)
	}
}

func TestSubmitBatchAbortsOnFirstError(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 0)
	ctx := context.Background()

	good1 := validAssessment()
	bad := validAssessment()
	good2 := validAssessment()
	repo.failOn = bad.WoundID

	result, err := svc.SubmitBatch(ctx, []*Assessment{good1, bad, good2})
	if err == nil {
		t.Fatal("expected batch error")
	}
	if !strings.Contains(err.Error(), bad.WoundID.String()) {
		t.Errorf("error should name the failing wound: %v", err)
	}
	if len(result.SubmittedIDs) != 1 {
		t.Fatalf("submitted = %v, want exactly the first record", result.SubmittedIDs)
	}
	if result.FailedWound == nil || *result.FailedWound != bad.WoundID {
		t.Errorf("failed wound = %v, want %v", result.FailedWound, bad.WoundID)
	}
	// No rollback: the first record remains persisted.
	if len(repo.records) != 1 {
		t.Errorf("expected 1 persisted record, got %d", len(repo.records))
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
	done  chan struct{}
}

func (n *recordingNotifier) AssessmentSubmitted(_ context.Context, a *Assessment) {
	n.mu.Lock()
	n.calls = append(n.calls, a.ID)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func TestCreateNotifiesAfterPersist(t *testing.T) {
	svc := NewService(newMockRepo(), 0)
	n := &recordingNotifier{done: make(chan struct{}, 1)}
	svc.SetNotifier(n)

	a := validAssessment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	select {
	case <-n.done:
	case <-time.After(time.Second):
		t.Fatal("notifier was not invoked")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) != 1 || n.calls[0] != a.ID {
		t.Errorf("notifier calls = %v", n.calls)
	}
}

func TestCreateRejectedDoesNotNotify(t *testing.T) {
	svc := NewService(newMockRepo(), 0)
	n := &recordingNotifier{done: make(chan struct{}, 1)}
	svc.SetNotifier(n)

	a := validAssessment()
	a.WoundType = ""
	if err := svc.Create(context.Background(), a); err == nil {
		t.Fatal("expected validation error")
	}
	select {
	case <-n.done:
		t.Fatal("notifier must not fire for rejected submissions")
	case <-time.After(50 * time.Millisecond):
	}
}
