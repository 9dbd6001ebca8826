package account

import "context"

type UserRepository interface {
	// Create fails with apperr DuplicateEmail when the email is taken.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePasswordHash(ctx context.Context, id int64, digest string) error
}
