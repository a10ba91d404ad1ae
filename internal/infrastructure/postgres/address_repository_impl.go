package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andriansp/gocommerce/internal/domain/entity"
	"github.com/andriansp/gocommerce/internal/domain/repository"
)

const addressColumns = `id, user_id, address_type, street_address, apartment,
	city, state, postal_code, country, is_default, created_at, updated_at`

type AddressRepository struct {
	pool *pgxpool.Pool
}

func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

func scanAddress(row pgx.Row) (*entity.Address, error) {
	a := &entity.Address{}
	if err := row.Scan(&a.ID, &a.UserID, &a.AddressType, &a.StreetAddress,
		&a.Apartment, &a.City, &a.State, &a.PostalCode, &a.Country,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]entity.Address, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Address, 0, 4)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AddressRepository) GetByID(ctx context.Context, id, userID string) (*entity.Address, error) {
	return scanAddress(r.pool.QueryRow(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`, id, userID))
}

// clearSiblingDefaults demotes every other default address of the same
// (user, address_type) pair. Runs inside the caller's transaction so a
// failed write never leaves zero or two defaults behind; the partial unique
// index on (user_id, address_type) WHERE is_default backstops concurrent
// writers.
func clearSiblingDefaults(ctx context.Context, tx pgx.Tx, userID, addressType, excludeID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE addresses
		SET is_default = FALSE, updated_at = now()
		WHERE user_id = $1 AND address_type = $2 AND is_default AND id <> $3
	`, userID, addressType, excludeID)
	return err
}

func (r *AddressRepository) Create(ctx context.Context, a *entity.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if a.IsDefault {
		// No sibling carries the new row's id yet; exclude the nil UUID.
		if err := clearSiblingDefaults(ctx, tx, a.UserID, a.AddressType,
			"00000000-0000-0000-0000-000000000000"); err != nil {
			return err
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO addresses (user_id, address_type, street_address, apartment,
			city, state, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE(NULLIF($8, ''), 'United States'), $9)
		RETURNING id, country, created_at, updated_at
	`, a.UserID, a.AddressType, a.StreetAddress, a.Apartment, a.City, a.State,
		a.PostalCode, a.Country, a.IsDefault)
	if err := row.Scan(&a.ID, &a.Country, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *AddressRepository) Update(ctx context.Context, a *entity.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if a.IsDefault {
		if err := clearSiblingDefaults(ctx, tx, a.UserID, a.AddressType, a.ID); err != nil {
			return err
		}
	}

	row := tx.QueryRow(ctx, `
		UPDATE addresses
		SET address_type = $1, street_address = $2, apartment = $3, city = $4,
			state = $5, postal_code = $6, country = $7, is_default = $8,
			updated_at = now()
		WHERE id = $9 AND user_id = $10
		RETURNING updated_at
	`, a.AddressType, a.StreetAddress, a.Apartment, a.City, a.State,
		a.PostalCode, a.Country, a.IsDefault, a.ID, a.UserID)
	if err := row.Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *AddressRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM addresses WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AddressRepository = (*AddressRepository)(nil)
