package visit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	visits map[uuid.UUID]*Visit
}

func newMockRepo() *mockRepo {
	return &mockRepo{visits: make(map[uuid.UUID]*Visit)}
}

func (m *mockRepo) Create(_ context.Context, v *Visit) error {
	v.ID = uuid.New()
	cp := *v
	m.visits[v.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	v, ok := m.visits[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *v
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, v *Visit) error {
	cp := *v
	m.visits[v.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.visits, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*Visit, int, error) {
	var out []*Visit
	for _, v := range m.visits {
		if v.PatientID == patientID {
			out = append(out, v)
		}
	}
	return out, len(out), nil
}

// fixedCounter reports a constant assessment count for any visit.
type fixedCounter int

func (n fixedCounter) CountByVisit(_ context.Context, _ uuid.UUID) (int, error) {
	return int(n), nil
}

func inProgressVisit(t *testing.T, svc *Service) *Visit {
	t.Helper()
	v := &Visit{
		PatientID: uuid.New(),
		VisitType: "Follow-Up",
		Status:    StatusInProgress,
		VisitDate: time.Now(),
	}
	if err := svc.Create(context.Background(), v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(newMockRepo(), fixedCounter(0))
	v := &Visit{PatientID: uuid.New(), VisitType: "Initial Evaluation"}
	if err := svc.Create(context.Background(), v); err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusScheduled {
		t.Errorf("status default = %q, want Scheduled", v.Status)
	}
	if v.VisitDate.IsZero() {
		t.Error("visit date should default to now")
	}
}

func TestCreateCannotStartFinalized(t *testing.T) {
	svc := NewService(newMockRepo(), fixedCounter(0))
	v := &Visit{PatientID: uuid.New(), VisitType: "Follow-Up", Status: StatusFinalized}
	if err := svc.Create(context.Background(), v); err == nil {
		t.Error("creating an already-finalized visit should be rejected")
	}
}

func TestFinalizeLifecycle(t *testing.T) {
	svc := NewService(newMockRepo(), fixedCounter(1))
	ctx := context.Background()
	by := uuid.New()

	v := inProgressVisit(t, svc)
	got, err := svc.Finalize(ctx, v.ID, by)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFinalized || got.FinalizedAt == nil || got.FinalizedByID == nil {
		t.Fatalf("finalize did not stamp the visit: %+v", got)
	}

	// One-way transition.
	if _, err := svc.Finalize(ctx, v.ID, by); err == nil {
		t.Error("finalizing twice should be rejected")
	}
	upd := *got
	upd.Status = StatusInProgress
	if err := svc.Update(ctx, &upd); err == nil {
		t.Error("a finalized visit must not be editable")
	}
	if err := svc.Delete(ctx, v.ID); err == nil {
		t.Error("a finalized visit must not be deletable")
	}
}

func TestFinalizeRequiresInProgress(t *testing.T) {
	svc := NewService(newMockRepo(), fixedCounter(1))
	ctx := context.Background()

	scheduled := &Visit{PatientID: uuid.New(), VisitType: "Follow-Up"}
	if err := svc.Create(ctx, scheduled); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Finalize(ctx, scheduled.ID, uuid.New()); err == nil {
		t.Error("a scheduled visit cannot be finalized")
	}

	cancelled := &Visit{PatientID: uuid.New(), VisitType: "Follow-Up", Status: StatusCancelled}
	if err := svc.Create(ctx, cancelled); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Finalize(ctx, cancelled.ID, uuid.New()); err == nil {
		t.Error("a cancelled visit cannot be finalized")
	}
}

func TestFinalizeRequiresDocumentation(t *testing.T) {
	ctx := context.Background()

	// No note, no assessments: the visit is empty and must stay open.
	svc := NewService(newMockRepo(), fixedCounter(0))
	empty := inProgressVisit(t, svc)
	if _, err := svc.Finalize(ctx, empty.ID, uuid.New()); err == nil {
		t.Error("an empty visit should not be finalizable")
	}
	if got, _ := svc.Get(ctx, empty.ID); got.Status == StatusFinalized {
		t.Errorf("empty visit was finalized: status=%s", got.Status)
	}

	// A visit note alone is enough.
	note := "Dressing changed, patient tolerated well."
	noted := inProgressVisit(t, svc)
	noted.Notes = &note
	if err := svc.Update(ctx, noted); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Finalize(ctx, noted.ID, uuid.New()); err != nil {
		t.Errorf("a visit with a note should finalize: %v", err)
	}

	// A blank note does not count as documentation.
	blank := "   "
	padded := inProgressVisit(t, svc)
	padded.Notes = &blank
	if err := svc.Update(ctx, padded); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Finalize(ctx, padded.ID, uuid.New()); err == nil {
		t.Error("a whitespace-only note should not satisfy the documentation gate")
	}

	// One submitted assessment alone is enough.
	withAssessment := NewService(newMockRepo(), fixedCounter(1))
	assessed := inProgressVisit(t, withAssessment)
	if _, err := withAssessment.Finalize(ctx, assessed.ID, uuid.New()); err != nil {
		t.Errorf("a visit with an assessment should finalize: %v", err)
	}
}
