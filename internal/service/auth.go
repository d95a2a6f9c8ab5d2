package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ctoon/ctoon-api/internal/crypto"
	"github.com/ctoon/ctoon-api/internal/model"
	"github.com/ctoon/ctoon-api/internal/repository"
)

// Sentinel errors carry the exact user-facing message for each rejection.
// ErrInvalidCredentials deliberately covers both unknown email and wrong
// password so responses cannot be used to probe which emails exist.
var (
	ErrEmailRequired      = errors.New("Email is required")
	ErrPasswordTooShort   = errors.New("Password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("Passwords do not match")
	ErrPasswordRequired   = errors.New("Password is required")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// CredentialStore is the durable user-record storage the service
// orchestrates against. Email is the unique login key; Create assigns the
// record's ID and returns repository.ErrDuplicateEmail when the unique
// index rejects the insert.
type CredentialStore interface {
	Create(ctx context.Context, user *model.User) error
	CountByEmail(ctx context.Context, email string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// ProfileStore reads the profile rows created alongside registration.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Profile, error)
}

// AuthService orchestrates registration and login: input validation,
// uniqueness enforcement, password hashing and session-token issuance.
// It holds no mutable state, so a single instance serves all requests.
type AuthService struct {
	store    CredentialStore
	profiles ProfileStore
	hasher   *crypto.PasswordHasher
	tokens   *crypto.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(store CredentialStore, profiles ProfileStore, hasher *crypto.PasswordHasher, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		store:    store,
		profiles: profiles,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates a new credential record and returns a success result
// carrying a session token and the public user view. Validation failures
// return before any store access. The CountByEmail check is only a fast
// path: the store's unique email index decides concurrent races, and its
// rejection maps to the same conflict error.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResult, error) {
	if req.Email == "" {
		return model.AuthResult{}, ErrEmailRequired
	}
	if len(req.Password) < MinPasswordLength {
		return model.AuthResult{}, ErrPasswordTooShort
	}
	if req.Password != req.PasswordConfirmation {
		return model.AuthResult{}, ErrPasswordMismatch
	}

	count, err := s.store.CountByEmail(ctx, req.Email)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("checking email uniqueness: %w", err)
	}
	if count > 0 {
		return model.AuthResult{}, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResult{}, ErrEmailTaken
		}
		return model.AuthResult{}, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issuing token: %w", err)
	}

	return model.AuthResult{
		Success: true,
		Message: "Registration successful",
		Token:   token,
		User:    userView(user),
	}, nil
}

// Login authenticates a user and returns a success result with a fresh
// session token. Unknown email and wrong password resolve to the same
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error) {
	if req.Email == "" {
		return model.AuthResult{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.AuthResult{}, ErrPasswordRequired
	}

	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResult{}, ErrInvalidCredentials
		}
		return model.AuthResult{}, fmt.Errorf("looking up user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issuing token: %w", err)
	}

	return model.AuthResult{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    userView(user),
	}, nil
}

// GetUserByID looks up the public view of a user. An unknown ID returns
// (nil, nil) rather than an error.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.UserView, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return userView(user), nil
}

// GetUserByEmail looks up the public view of a user by email. An unknown
// email returns (nil, nil) rather than an error.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*model.UserView, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return userView(user), nil
}

// GetProfile returns the profile view for a user, or (nil, nil) when none
// exists.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*model.ProfileView, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.ProfileView{
		Bio:        profile.Bio,
		AvatarPath: profile.AvatarPath,
	}, nil
}

// IsValidationError reports whether err is a malformed-input rejection
// whose message is safe to surface verbatim.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrPasswordRequired)
}

func userView(user *model.User) *model.UserView {
	return &model.UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
