package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/almasmith/mercer-library/internal/config"
	"github.com/almasmith/mercer-library/internal/database/users"
	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/validation"
)

// Defaults applied when config.Auth leaves a field at zero.
const (
	DefaultMaxLoginAttempts = 5
	DefaultLockoutDuration  = 15 * time.Minute
)

// Audit actions written by the service.
const (
	ActionRegister     = "register"
	ActionLoginSuccess = "login_success"
	ActionLoginFailed  = "login_failed"
)

// ErrInvalidCredentials covers unknown emails, wrong passwords and locked
// accounts alike so that callers cannot tell them apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore defines the user data access the service needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	RecordLoginFailure(ctx context.Context, id uint, maxAttempts int, lockedUntil time.Time) (bool, error)
	RecordLoginSuccess(ctx context.Context, id uint, at time.Time) error
}

// Auditor receives authentication events.
type Auditor interface {
	LogAuth(ctx context.Context, userID uint, action string, ipAddr, userAgent string, success bool)
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"notblank,min=8"`
}

// Client identifies the caller for audit purposes.
type Client struct {
	IP        string
	UserAgent string
}

// Token is returned by Register and Login.
type Token struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Service handles registration and login.
type Service struct {
	users   UserStore
	tokens  *TokenIssuer
	auditor Auditor
	config  config.Auth
	now     func() time.Time
}

// NewService creates a new authentication service. auditor may be nil.
func NewService(userStore UserStore, tokens *TokenIssuer, auditor Auditor, cfg config.Auth) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = DefaultMaxLoginAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = DefaultLockoutDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	return &Service{
		users:   userStore,
		tokens:  tokens,
		auditor: auditor,
		config:  cfg,
		now:     time.Now,
	}
}

// Register creates an account and signs the new user in. Invalid input and
// an already registered email are reported as validation.Errors.
func (s *Service) Register(ctx context.Context, creds Credentials, client Client) (*Token, error) {
	creds.Email = users.NormalizeEmail(creds.Email)
	if errs := validation.Struct(creds); errs != nil {
		return nil, errs
	}

	hash, err := HashPassword(creds.Password, s.config.BcryptCost)
	if errors.Is(err, ErrPasswordTooLong) {
		return nil, validation.Errors{"password": {"password must be at most 72 bytes"}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, creds.Email, hash)
	if errors.Is(err, users.ErrEmailTaken) {
		return nil, validation.Errors{"email": {"email is already registered"}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit(ctx, user.ID, ActionRegister, client, true)
	return s.issue(user)
}

// Login verifies credentials and returns an access token. Consecutive
// failures lock the account for the configured duration.
func (s *Service) Login(ctx context.Context, creds Credentials, client Client) (*Token, error) {
	user, err := s.users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, users.ErrNotFound) {
		s.audit(ctx, 0, ActionLoginFailed, client, false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		s.audit(ctx, user.ID, ActionLoginFailed, client, false)
		return nil, ErrInvalidCredentials
	}

	if err := CheckPassword(creds.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, ErrInvalidPassword) {
			return nil, err
		}
		if _, err := s.users.RecordLoginFailure(ctx, user.ID, s.config.MaxLoginAttempts, now.Add(s.config.LockoutDuration)); err != nil {
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}
		s.audit(ctx, user.ID, ActionLoginFailed, client, false)
		return nil, ErrInvalidCredentials
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	s.audit(ctx, user.ID, ActionLoginSuccess, client, true)
	return s.issue(user)
}

func (s *Service) issue(user *entities.User) (*Token, error) {
	signed, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: signed,
		ExpiresIn:   int64(s.tokens.TTL() / time.Second),
	}, nil
}

func (s *Service) audit(ctx context.Context, userID uint, action string, client Client, success bool) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogAuth(ctx, userID, action, client.IP, client.UserAgent, success)
}
