package user

import "context"

// Repository resolves user profiles. GetByID returns ErrProfileNotFound for unknown ids.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
