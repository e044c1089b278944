package wound

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

const woundCols = `id, patient_id, location, laterality, onset_date, status, notes, created_at, updated_at`

func scanWound(row pgx.Row) (*Wound, error) {
	var w Wound
	err := row.Scan(&w.ID, &w.PatientID, &w.Location, &w.Laterality, &w.OnsetDate,
		&w.Status, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	return &w, err
}

func (r *repoPG) Create(ctx context.Context, w *Wound) error {
	w.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wound (id, patient_id, location, laterality, onset_date, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		w.ID, w.PatientID, w.Location, w.Laterality, w.OnsetDate, w.Status, w.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Wound, error) {
	return scanWound(r.pool.QueryRow(ctx,
		`SELECT `+woundCols+` FROM wound WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, w *Wound) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE wound SET location=$2, laterality=$3, onset_date=$4, status=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		w.ID, w.Location, w.Laterality, w.OnsetDate, w.Status, w.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wound WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Wound, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wound WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+woundCols+` FROM wound WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Wound
	for rows.Next() {
		w, err := scanWound(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, rows.Err()
}
