package patient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
	"github.com/dentalcare/dentalcare/internal/platform/db"
)

const emailConstraint = "patients_email_key"

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, name, age, email, phone, address, status, created_at, updated_at`

func (r *patientRepoPG) scanRow(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Email, &p.Phone, &p.Address, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("patient")
		}
		if db.IsUniqueViolation(err, emailConstraint) {
			return nil, apperr.DuplicateEmail(err)
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	created, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (name, age, email, phone, address, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+patientCols,
		p.Name, p.Age, p.Email, p.Phone, p.Address, p.Status))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE email = $1`, email))
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	items := make([]*Patient, 0)
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Update relies on COALESCE so that a NULL parameter keeps the stored value.
func (r *patientRepoPG) Update(ctx context.Context, id int64, u Update) (*Patient, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET
			name       = COALESCE($2, name),
			age        = COALESCE($3, age),
			email      = COALESCE($4, email),
			phone      = COALESCE($5, phone),
			address    = COALESCE($6, address),
			status     = COALESCE($7, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+patientCols,
		id, u.Name, u.Age, u.Email, u.Phone, u.Address, u.Status))
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) (*Patient, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `DELETE FROM patients WHERE id = $1 RETURNING `+patientCols, id))
}
