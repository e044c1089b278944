package patient

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

const patientCols = `id, mrn, first_name, last_name, birth_date, gender, phone, email,
	address_line1, address_line2, city, state, postal_code, active, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MRN, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender, &p.Phone, &p.Email,
		&p.AddressLn1, &p.AddressLn2, &p.City, &p.State, &p.PostalCode, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, mrn, first_name, last_name, birth_date, gender, phone, email,
			address_line1, address_line2, city, state, postal_code, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Phone, p.Email,
		p.AddressLn1, p.AddressLn2, p.City, p.State, p.PostalCode, p.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patient SET mrn=$2, first_name=$3, last_name=$4, birth_date=$5, gender=$6,
			phone=$7, email=$8, address_line1=$9, address_line2=$10, city=$11, state=$12,
			postal_code=$13, active=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.BirthDate, p.Gender,
		p.Phone, p.Email, p.AddressLn1, p.AddressLn2, p.City, p.State,
		p.PostalCode, p.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) Search(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + name + "%"
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE first_name ILIKE $1 OR last_name ILIKE $1`,
		pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE first_name ILIKE $1 OR last_name ILIKE $1
		 ORDER BY last_name, first_name LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
