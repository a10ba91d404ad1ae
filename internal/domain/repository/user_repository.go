package repository

import (
	"context"

	"github.com/andriansp/gocommerce/internal/domain/entity"
)

// UserRepository defines the persistence operations of the account domain.
type UserRepository interface {
	// CreateWithProfile inserts the user and an empty profile row in a
	// single transaction; neither row survives a failure of the other.
	CreateWithProfile(ctx context.Context, u *entity.User) error

	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error

	// EnsureProfile returns the user's profile, creating the row first if
	// registration somehow left it missing.
	EnsureProfile(ctx context.Context, userID string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, p *entity.Profile) error
}

// AddressRepository persists user addresses. All lookups are scoped by
// owner; an address belonging to another user reads as ErrNotFound.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Address, error)
	GetByID(ctx context.Context, id, userID string) (*entity.Address, error)

	// Create and Update run inside a transaction that first clears
	// is_default on sibling rows of the same (user, address_type) whenever
	// the written row has IsDefault set.
	Create(ctx context.Context, a *entity.Address) error
	Update(ctx context.Context, a *entity.Address) error

	Delete(ctx context.Context, id, userID string) error
}
