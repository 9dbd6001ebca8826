package patient

import "context"

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	// Update applies the non-nil fields of u and returns the new row.
	Update(ctx context.Context, id int64, u Update) (*Patient, error)
	// Delete removes the row and returns it as it was.
	Delete(ctx context.Context, id int64) (*Patient, error)
}
