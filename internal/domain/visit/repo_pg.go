package visit

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

const visitCols = `id, patient_id, visit_type, status, visit_date, finalized_at, finalized_by_id,
	notes, created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.PatientID, &v.VisitType, &v.Status, &v.VisitDate, &v.FinalizedAt,
		&v.FinalizedByID, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO visit (id, patient_id, visit_type, status, visit_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		v.ID, v.PatientID, v.VisitType, v.Status, v.VisitDate, v.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.pool.QueryRow(ctx,
		`SELECT `+visitCols+` FROM visit WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, v *Visit) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE visit SET visit_type=$2, status=$3, visit_date=$4, finalized_at=$5,
			finalized_by_id=$6, notes=$7, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.VisitType, v.Status, v.VisitDate, v.FinalizedAt, v.FinalizedByID, v.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM visit WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM visit WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+visitCols+` FROM visit WHERE patient_id = $1
		 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}
