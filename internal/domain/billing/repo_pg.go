package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const lineCols = `id, visit_id, patient_id, code, description, units,
	billed_by_id, billed_by_credential, note, created_at, updated_at`

func scanLine(row pgx.Row) (*VisitBillingLine, error) {
	var l VisitBillingLine
	err := row.Scan(&l.ID, &l.VisitID, &l.PatientID, &l.Code, &l.Description, &l.Units,
		&l.BilledByID, &l.BilledByCred, &l.Note, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *VisitBillingLine) error {
	l.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO visit_billing_line (id, visit_id, patient_id, code, description, units,
			billed_by_id, billed_by_credential, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		l.ID, l.VisitID, l.PatientID, l.Code, l.Description, l.Units,
		l.BilledByID, l.BilledByCred, l.Note)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*VisitBillingLine, error) {
	return scanLine(r.pool.QueryRow(ctx,
		`SELECT `+lineCols+` FROM visit_billing_line WHERE id = $1`, id))
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM visit_billing_line WHERE id = $1`, id)
	return err
}

func (r *repoPG) list(ctx context.Context, where string, id uuid.UUID, limit, offset int) ([]*VisitBillingLine, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM visit_billing_line WHERE `+where, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+lineCols+` FROM visit_billing_line WHERE `+where+
			` ORDER BY created_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*VisitBillingLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID, limit, offset int) ([]*VisitBillingLine, int, error) {
	return r.list(ctx, `visit_id = $1`, visitID, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VisitBillingLine, int, error) {
	return r.list(ctx, `patient_id = $1`, patientID, limit, offset)
}
