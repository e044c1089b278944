package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const assessmentCols = `id, wound_id, visit_id, patient_id, assessed_by_id, wound_type, pressure_stage,
	healing_status, length_cm, width_cm, depth_cm, area_cm2,
	epithelial_percent, granulation_percent, slough_percent,
	exudate_amount, exudate_type, odor, infection_signs, pain_level,
	assessment_notes, undermining, tunneling, periwound_condition,
	location_confirmed, assessed_at, created_at, updated_at`

func scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	err := row.Scan(&a.ID, &a.WoundID, &a.VisitID, &a.PatientID, &a.AssessedByID, &a.WoundType, &a.PressureStage,
		&a.HealingStatus, &a.LengthCM, &a.WidthCM, &a.DepthCM, &a.AreaCM2,
		&a.EpithelialPercent, &a.GranulationPercent, &a.SloughPercent,
		&a.ExudateAmount, &a.ExudateType, &a.Odor, &a.InfectionSigns, &a.PainLevel,
		&a.AssessmentNotes, &a.Undermining, &a.Tunneling, &a.PeriwoundCondition,
		&a.LocationConfirmed, &a.AssessedAt, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Assessment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wound_assessment (id, wound_id, visit_id, patient_id, assessed_by_id, wound_type,
			pressure_stage, healing_status, length_cm, width_cm, depth_cm, area_cm2,
			epithelial_percent, granulation_percent, slough_percent,
			exudate_amount, exudate_type, odor, infection_signs, pain_level,
			assessment_notes, undermining, tunneling, periwound_condition,
			location_confirmed, assessed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,
			COALESCE($26, NOW()))`,
		a.ID, a.WoundID, a.VisitID, a.PatientID, a.AssessedByID, a.WoundType,
		a.PressureStage, a.HealingStatus, a.LengthCM, a.WidthCM, a.DepthCM, a.AreaCM2,
		a.EpithelialPercent, a.GranulationPercent, a.SloughPercent,
		a.ExudateAmount, a.ExudateType, a.Odor, a.InfectionSigns, a.PainLevel,
		a.AssessmentNotes, a.Undermining, a.Tunneling, a.PeriwoundCondition,
		a.LocationConfirmed, nullableTime(a.AssessedAt))
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return scanAssessment(r.pool.QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM wound_assessment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Assessment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE wound_assessment SET wound_type=$2, pressure_stage=$3, healing_status=$4,
			length_cm=$5, width_cm=$6, depth_cm=$7, area_cm2=$8,
			epithelial_percent=$9, granulation_percent=$10, slough_percent=$11,
			exudate_amount=$12, exudate_type=$13, odor=$14, infection_signs=$15, pain_level=$16,
			assessment_notes=$17, undermining=$18, tunneling=$19, periwound_condition=$20,
			location_confirmed=$21, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.WoundType, a.PressureStage, a.HealingStatus,
		a.LengthCM, a.WidthCM, a.DepthCM, a.AreaCM2,
		a.EpithelialPercent, a.GranulationPercent, a.SloughPercent,
		a.ExudateAmount, a.ExudateType, a.Odor, a.InfectionSigns, a.PainLevel,
		a.AssessmentNotes, a.Undermining, a.Tunneling, a.PeriwoundCondition,
		a.LocationConfirmed)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wound_assessment WHERE id = $1`, id)
	return err
}

func (r *repoPG) list(ctx context.Context, where string, id uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wound_assessment WHERE `+where, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+assessmentCols+` FROM wound_assessment WHERE `+where+
			` ORDER BY assessed_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByWound(ctx context.Context, woundID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return r.list(ctx, `wound_id = $1`, woundID, limit, offset)
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return r.list(ctx, `visit_id = $1`, visitID, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return r.list(ctx, `patient_id = $1`, patientID, limit, offset)
}

func (r *repoPG) CountByWound(ctx context.Context, woundID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wound_assessment WHERE wound_id = $1`, woundID).Scan(&n)
	return n, err
}

func (r *repoPG) CountByVisit(ctx context.Context, visitID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wound_assessment WHERE visit_id = $1`, visitID).Scan(&n)
	return n, err
}
