package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/andriansp/gocommerce/internal/domain/entity"
	repo "github.com/andriansp/gocommerce/internal/domain/repository"
	"github.com/andriansp/gocommerce/pkg/helpers"
	"github.com/andriansp/gocommerce/pkg/mailer"
)

// AccountService owns registration, authentication and everything scoped to
// the authenticated user: profile, addresses, password and account state.
type AccountService struct {
	Users     repo.UserRepository
	Addresses repo.AddressRepository
	Tokens    *helpers.TokenManager
	Redis     *redis.Client
	Logger    *logrus.Logger
	Pub       *helpers.RabbitPublisher
	GCS       *storage.Client
	GCSBucket string
}

func NewAccountService(users repo.UserRepository, addresses repo.AddressRepository, tokens *helpers.TokenManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, gcs *storage.Client, gcsBucket string) *AccountService {
	return &AccountService{
		Users:     users,
		Addresses: addresses,
		Tokens:    tokens,
		Redis:     rdb,
		Logger:    logger,
		Pub:       pub,
		GCS:       gcs,
		GCSBucket: gcsBucket,
	}
}

func tokenKey(userID string) string   { return "auth:token:user:" + userID }
func sessionKey(userID string) string { return "user:session:" + userID }

// NormalizeIdentifier lowercases and trims an email or username before any
// lookup or write.
func NormalizeIdentifier(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type RegisterInput struct {
	Email           string
	Username        string
	FirstName       string
	LastName        string
	PhoneNumber     string
	Password        string
	PasswordConfirm string
}

// Register runs the ordered validation pipeline (password policy, password
// confirmation, email uniqueness, username uniqueness), then persists the
// user and an empty profile in one transaction and issues the bearer token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenResult, error) {
	if err := helpers.ValidatePassword(in.Password); err != nil {
		return nil, TokenResult{}, FieldErrors{"password": err.Error()}
	}
	if in.Password != in.PasswordConfirm {
		return nil, TokenResult{}, FieldErrors{"password_confirm": "passwords don't match"}
	}

	email := NormalizeIdentifier(in.Email)
	if exists, err := s.Users.EmailExists(ctx, email); err != nil {
		return nil, TokenResult{}, err
	} else if exists {
		return nil, TokenResult{}, FieldErrors{"email": "a user with this email already exists"}
	}

	username := NormalizeIdentifier(in.Username)
	if exists, err := s.Users.UsernameExists(ctx, username); err != nil {
		return nil, TokenResult{}, err
	} else if exists {
		return nil, TokenResult{}, FieldErrors{"username": "a user with this username already exists"}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenResult{}, err
	}

	u := &entity.User{
		Email:        email,
		Username:     username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
	}
	if err := s.Users.CreateWithProfile(ctx, u); err != nil {
		return nil, TokenResult{}, err
	}

	tok, err := s.IssueToken(ctx, u)
	if err != nil {
		return nil, TokenResult{}, err
	}

	s.enqueueEmail(ctx, mailer.EmailJob{
		To:   u.Email,
		Type: mailer.JobWelcome,
		Data: map[string]any{"name": u.FullName(), "username": u.Username},
	})

	return u, tok, nil
}

// Login authenticates by normalized email. Unknown email and wrong password
// are indistinguishable to the caller; a disabled account is reported
// separately only after the credentials checked out.
func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.User, TokenResult, error) {
	u, err := s.Users.GetByEmail(ctx, NormalizeIdentifier(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenResult{}, ErrInvalidCredentials
		}
		return nil, TokenResult{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenResult{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, TokenResult{}, ErrAccountDisabled
	}

	tok, err := s.IssueToken(ctx, u)
	if err != nil {
		return nil, TokenResult{}, err
	}
	return u, tok, nil
}

type TokenResult struct {
	Token     string
	ExpiresAt time.Time
}

// IssueToken reuses the user's stored token when one is still valid,
// otherwise generates a fresh one and records it plus a session hash in
// Redis. Reuse is what makes the credential idempotent per user until it
// is revoked.
func (s *AccountService) IssueToken(ctx context.Context, u *entity.User) (TokenResult, error) {
	if s.Redis != nil {
		if existing, err := s.Redis.Get(ctx, tokenKey(u.ID)).Result(); err == nil && existing != "" {
			if claims, perr := s.Tokens.Parse(existing); perr == nil {
				return TokenResult{Token: existing, ExpiresAt: claims.ExpiresAt.Time}, nil
			}
		}
	}

	token, exp, err := s.Tokens.Generate(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return TokenResult{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"username":   u.Username,
			"name":       u.FullName(),
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		ttl := time.Until(exp)
		pipe := s.Redis.Pipeline()
		pipe.Set(ctx, tokenKey(u.ID), token, ttl)
		pipe.HSet(ctx, sessionKey(u.ID), fields)
		pipe.Expire(ctx, sessionKey(u.ID), ttl)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("user_id", u.ID).Warn("redis pipeline failed")
		}
	}

	return TokenResult{Token: token, ExpiresAt: exp}, nil
}

// RevokeToken invalidates the stored token and session. The next login
// issues a new credential.
func (s *AccountService) RevokeToken(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, tokenKey(userID), sessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("token revoke failed")
	}
}

func (s *AccountService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetProfile returns the user together with the profile row, creating the
// profile defensively when missing.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*entity.User, *entity.Profile, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.Users.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, p, nil
}

type UpdateProfileInput struct {
	FirstName          *string
	LastName           *string
	PhoneNumber        *string
	DateOfBirth        *time.Time
	AvatarURL          *string
	Bio                *string
	Location           *string
	Website            *string
	EmailNotifications *bool
	MarketingEmails    *bool
}

// UpdateProfile writes user fields and profile fields together; nil inputs
// leave the stored value untouched.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, *entity.Profile, error) {
	u, p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = *in.PhoneNumber
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = in.DateOfBirth
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, nil, err
	}

	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Website != nil {
		p.Website = *in.Website
	}
	if in.EmailNotifications != nil {
		p.EmailNotifications = *in.EmailNotifications
	}
	if in.MarketingEmails != nil {
		p.MarketingEmails = *in.MarketingEmails
	}
	if err := s.Users.UpdateProfile(ctx, p); err != nil {
		return nil, nil, err
	}

	if s.Redis != nil {
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, sessionKey(u.ID), map[string]any{
			"name":       u.FullName(),
			"updated_at": nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, sessionKey(u.ID)).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, sessionKey(u.ID), ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("user_id", u.ID).Warn("redis pipeline failed")
		}
	}

	return u, p, nil
}

// UploadAvatar stores the image in GCS and saves the public URL on the
// profile.
func (s *AccountService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("storage not configured")
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}

	p, err := s.Users.EnsureProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	p.AvatarURL = url
	if err := s.Users.UpdateProfile(ctx, p); err != nil {
		return "", err
	}
	return url, nil
}

// Dashboard aggregates user, profile and addresses. TotalOrders stays zero
// until an orders subsystem exists.
type Dashboard struct {
	User        *entity.User
	Profile     *entity.Profile
	Addresses   []entity.Address
	TotalOrders int
}

func (s *AccountService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	u, p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	addrs, err := s.Addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{User: u, Profile: p, Addresses: addrs, TotalOrders: 0}, nil
}

// ChangePassword verifies the current password, applies the policy to the
// new one and stores the new hash.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, newPasswordConfirm string) error {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, oldPassword) {
		return FieldErrors{"old_password": "incorrect current password"}
	}
	if err := helpers.ValidatePassword(newPassword); err != nil {
		return FieldErrors{"new_password": err.Error()}
	}
	if newPassword != newPasswordConfirm {
		return FieldErrors{"new_password_confirm": "new passwords don't match"}
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.enqueueEmail(ctx, mailer.EmailJob{
		To:   u.Email,
		Type: mailer.JobPasswordChanged,
		Data: map[string]any{"name": u.FullName()},
	})
	return nil
}

// Deactivate disables the account after password re-confirmation. A wrong
// password changes nothing and leaves the token valid.
func (s *AccountService) Deactivate(ctx context.Context, userID, password string) error {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return ErrIncorrectPassword
	}
	if err := s.Users.SetActive(ctx, userID, false); err != nil {
		return err
	}
	s.RevokeToken(ctx, userID)
	return nil
}

// CheckEmail reports whether the normalized email is free to register.
func (s *AccountService) CheckEmail(ctx context.Context, email string) (string, bool, error) {
	normalized := NormalizeIdentifier(email)
	if normalized == "" {
		return "", false, FieldErrors{"email": "email is required"}
	}
	exists, err := s.Users.EmailExists(ctx, normalized)
	return normalized, !exists, err
}

// CheckUsername reports whether the normalized username is free to register.
func (s *AccountService) CheckUsername(ctx context.Context, username string) (string, bool, error) {
	normalized := NormalizeIdentifier(username)
	if normalized == "" {
		return "", false, FieldErrors{"username": "username is required"}
	}
	exists, err := s.Users.UsernameExists(ctx, normalized)
	return normalized, !exists, err
}

func (s *AccountService) ListAddresses(ctx context.Context, userID string) ([]entity.Address, error) {
	return s.Addresses.ListByUser(ctx, userID)
}

func (s *AccountService) GetAddress(ctx context.Context, id, userID string) (*entity.Address, error) {
	return s.Addresses.GetByID(ctx, id, userID)
}

func (s *AccountService) CreateAddress(ctx context.Context, a *entity.Address) error {
	return s.Addresses.Create(ctx, a)
}

func (s *AccountService) UpdateAddress(ctx context.Context, a *entity.Address) error {
	return s.Addresses.Update(ctx, a)
}

func (s *AccountService) DeleteAddress(ctx context.Context, id, userID string) error {
	return s.Addresses.Delete(ctx, id, userID)
}

// enqueueEmail publishes a mail job; delivery is best-effort and never
// fails the request.
func (s *AccountService) enqueueEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("email job publish failed")
	}
}
