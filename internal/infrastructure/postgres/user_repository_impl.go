package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andriansp/gocommerce/internal/domain/entity"
	"github.com/andriansp/gocommerce/internal/domain/repository"
)

const userColumns = `id, email, username, first_name, last_name, phone_number,
	date_of_birth, password_hash, is_active, is_staff, is_email_verified,
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PhoneNumber, &u.DateOfBirth, &u.PasswordHash, &u.IsActive, &u.IsStaff,
		&u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) CreateWithProfile(ctx context.Context, u *entity.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO users (email, username, first_name, last_name, phone_number,
			date_of_birth, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, is_staff, is_email_verified, created_at, updated_at
	`, u.Email, u.Username, u.FirstName, u.LastName, u.PhoneNumber, u.DateOfBirth, u.PasswordHash)
	if err := row.Scan(&u.ID, &u.IsActive, &u.IsStaff, &u.IsEmailVerified,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_profiles (user_id) VALUES ($1)
	`, u.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
	`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, phone_number = $3,
			date_of_birth = $4, updated_at = $5
		WHERE id = $6
	`, u.FirstName, u.LastName, u.PhoneNumber, u.DateOfBirth, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = $1, updated_at = now() WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) EnsureProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	// Registration creates the row; this covers users that predate it.
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, err
	}

	p := &entity.Profile{}
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, avatar_url, bio, location, website,
			email_notifications, marketing_emails, created_at, updated_at
		FROM user_profiles WHERE user_id = $1
	`, userID)
	if err := row.Scan(&p.UserID, &p.AvatarURL, &p.Bio, &p.Location, &p.Website,
		&p.EmailNotifications, &p.MarketingEmails, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE user_profiles
		SET avatar_url = $1, bio = $2, location = $3, website = $4,
			email_notifications = $5, marketing_emails = $6, updated_at = $7
		WHERE user_id = $8
	`, p.AvatarURL, p.Bio, p.Location, p.Website,
		p.EmailNotifications, p.MarketingEmails, p.UpdatedAt, p.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
