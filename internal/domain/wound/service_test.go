package wound

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	wounds map[uuid.UUID]*Wound
}

func newMockRepo() *mockRepo {
	return &mockRepo{wounds: make(map[uuid.UUID]*Wound)}
}

func (m *mockRepo) Create(_ context.Context, w *Wound) error {
	w.ID = uuid.New()
	cp := *w
	m.wounds[w.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Wound, error) {
	w, ok := m.wounds[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *w
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, w *Wound) error {
	cp := *w
	m.wounds[w.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.wounds, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*Wound, int, error) {
	var out []*Wound
	for _, w := range m.wounds {
		if w.PatientID == patientID {
			out = append(out, w)
		}
	}
	return out, len(out), nil
}

type fixedCounter int

func (f fixedCounter) CountByWound(_ context.Context, _ uuid.UUID) (int, error) {
	return int(f), nil
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	ctx := context.Background()

	w := &Wound{PatientID: uuid.New(), Location: "Left heel"}
	if err := svc.Create(ctx, w); err != nil {
		t.Fatal(err)
	}
	if w.Status != "Active" {
		t.Errorf("status default = %q, want Active", w.Status)
	}

	if err := svc.Create(ctx, &Wound{Location: "Left heel"}); err == nil {
		t.Error("missing patient should be rejected")
	}
	if err := svc.Create(ctx, &Wound{PatientID: uuid.New()}); err == nil {
		t.Error("missing location should be rejected")
	}
	bad := &Wound{PatientID: uuid.New(), Location: "Sacrum", Status: "Chronic"}
	if err := svc.Create(ctx, bad); err == nil {
		t.Error("unknown status should be rejected")
	}
}

func TestGetAnnotatesHasAssessments(t *testing.T) {
	repo := newMockRepo()
	ctx := context.Background()

	w := &Wound{PatientID: uuid.New(), Location: "Sacrum", Status: "Active"}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatal(err)
	}

	svc := NewService(repo, fixedCounter(0))
	got, err := svc.Get(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.HasAssessments {
		t.Error("wound with no assessments should report has_assessments=false")
	}

	svc = NewService(repo, fixedCounter(3))
	got, err = svc.Get(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasAssessments {
		t.Error("wound with assessments should report has_assessments=true")
	}
}

func TestUpdatePatientImmutable(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	w := &Wound{PatientID: uuid.New(), Location: "Sacrum", Status: "Active"}
	if err := svc.Create(ctx, w); err != nil {
		t.Fatal(err)
	}
	upd := *w
	upd.PatientID = uuid.New()
	if err := svc.Update(ctx, &upd); err == nil {
		t.Error("changing patient_id should be rejected")
	}
}
