package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ctoon/ctoon-api/internal/crypto"
	"github.com/ctoon/ctoon-api/internal/model"
	"github.com/ctoon/ctoon-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore is an in-memory CredentialStore keyed by email. It enforces
// the unique-email constraint the way the MySQL index does, so conflict
// handling can be tested without a database.
type fakeStore struct {
	nextID    int64
	users     map[string]*model.User
	createErr error
	storeOps  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*model.User)}
}

// Create mirrors UserRepository.Create: it assigns only the generated ID
// and persists the record as given, timestamps included. The service owns
// the creation time, so a fake stamping its own would mask a missing one.
func (f *fakeStore) Create(ctx context.Context, user *model.User) error {
	f.storeOps++
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.users[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

func (f *fakeStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	f.storeOps++
	if _, exists := f.users[email]; exists {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.storeOps++
	user, exists := f.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	f.storeOps++
	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakeProfiles struct {
	profiles map[int64]*model.Profile
	err      error
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, repository.ErrProfileNotFound
}

func newTestService(store *fakeStore) *AuthService {
	return NewAuthService(
		store,
		&fakeProfiles{profiles: make(map[int64]*model.Profile)},
		crypto.NewPasswordHasher(bcrypt.MinCost),
		crypto.NewTokenIssuer("test-secret", time.Hour),
	)
}

func registerReq() model.RegisterRequest {
	return model.RegisterRequest{
		Name:                 "Reader",
		Email:                "a@x.com",
		Password:             "Passw0rd!",
		PasswordConfirmation: "Passw0rd!",
	}
}

func TestRegisterSuccess(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	result, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("Register() result not successful")
	}
	if result.Message != "Registration successful" {
		t.Errorf("Register() message = %q", result.Message)
	}
	if result.Token == "" {
		t.Error("Register() returned no token")
	}
	if result.User == nil || result.User.Email != "a@x.com" || result.User.Name != "Reader" {
		t.Errorf("Register() user view = %+v", result.User)
	}
	if result.User.ID == 0 {
		t.Error("Register() user view has no ID")
	}

	issuer := crypto.NewTokenIssuer("test-secret", time.Hour)
	if !issuer.Validate(result.Token) {
		t.Error("Register() token does not validate")
	}
	if id, ok := issuer.Subject(result.Token); !ok || id != result.User.ID {
		t.Errorf("token subject = %d, want %d", id, result.User.ID)
	}
}

func TestRegisterSetsCreationTime(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	before := time.Now().UTC()
	result, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	// The store assigns only the ID; the view's creation time must come
	// from the record the service persisted, never the zero time.
	if result.User.CreatedAt.IsZero() {
		t.Fatalf("Register() user view createdAt is the zero time")
	}
	if result.User.CreatedAt.Before(before) || result.User.CreatedAt.After(time.Now().UTC()) {
		t.Errorf("Register() createdAt = %v, outside the call window", result.User.CreatedAt)
	}

	stored, err := store.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail() unexpected error: %v", err)
	}
	if !stored.CreatedAt.Equal(result.User.CreatedAt) {
		t.Errorf("stored createdAt %v differs from view createdAt %v", stored.CreatedAt, result.User.CreatedAt)
	}
}

func TestRegisterResultNeverCarriesHash(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	result, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshaling result: %v", err)
	}
	if strings.Contains(strings.ToLower(string(encoded)), "hash") {
		t.Errorf("result payload leaks hash material: %s", encoded)
	}
	if strings.Contains(string(encoded), "Passw0rd!") {
		t.Errorf("result payload leaks plaintext password: %s", encoded)
	}
}

func TestRegisterEmptyEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req := registerReq()
	req.Email = ""

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailRequired) {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}
	if store.storeOps != 0 {
		t.Errorf("store accessed %d times before validation passed", store.storeOps)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req := registerReq()
	req.Password = "short1"
	req.PasswordConfirmation = "short1"

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if store.storeOps != 0 {
		t.Errorf("store accessed %d times for invalid input", store.storeOps)
	}
	if len(store.users) != 0 {
		t.Error("record created despite failed validation")
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req := registerReq()
	req.Password = "Passw0rd!"
	req.PasswordConfirmation = "Passw0rd?"

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
	if len(store.users) != 0 {
		t.Error("record created despite confirmation mismatch")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("first Register() unexpected error: %v", err)
	}

	result, err := svc.Register(context.Background(), registerReq())
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	if result.Token != "" {
		t.Error("second Register() issued a token")
	}
	if len(store.users) != 1 {
		t.Errorf("store holds %d records for one email, want 1", len(store.users))
	}
}

func TestRegisterLostInsertRace(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	// Pre-check passes but the insert loses the race: the unique-index
	// rejection must surface as the same conflict as the pre-check.
	store.createErr = repository.ErrDuplicateEmail

	_, err := svc.Register(context.Background(), registerReq())
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken from rejected insert, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	result, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "a@x.com",
		Password: "Passw0rd!",
	})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if !result.Success || result.Message != "Login successful" {
		t.Errorf("Login() result = %+v", result)
	}
	if result.Token == "" {
		t.Error("Login() returned no token")
	}
}

func TestLoginGenericFailureMessage(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	_, wrongPassErr := svc.Login(context.Background(), model.LoginRequest{
		Email:    "a@x.com",
		Password: "not-the-password",
	})
	_, unknownEmailErr := svc.Login(context.Background(), model.LoginRequest{
		Email:    "z@x.com",
		Password: "Passw0rd!",
	})

	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassErr)
	}
	if !errors.Is(unknownEmailErr, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmailErr)
	}
	if wrongPassErr.Error() != unknownEmailErr.Error() {
		t.Errorf("failure messages differ: %q vs %q", wrongPassErr, unknownEmailErr)
	}
}

func TestLoginEmptyFields(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Login(context.Background(), model.LoginRequest{Password: "Passw0rd!"})
	if !errors.Is(err, ErrEmailRequired) {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com"})
	if !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestGetUserByIDAbsent(t *testing.T) {
	svc := newTestService(newFakeStore())

	view, err := svc.GetUserByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetUserByID() unexpected error: %v", err)
	}
	if view != nil {
		t.Errorf("GetUserByID() = %+v, want nil for unknown ID", view)
	}
}

func TestGetUserByEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	view, err := svc.GetUserByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() unexpected error: %v", err)
	}
	if view == nil || view.Email != "a@x.com" {
		t.Errorf("GetUserByEmail() = %+v", view)
	}

	absent, err := svc.GetUserByEmail(context.Background(), "z@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() unexpected error: %v", err)
	}
	if absent != nil {
		t.Errorf("GetUserByEmail() = %+v, want nil for unknown email", absent)
	}
}

func TestGetProfile(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[int64]*model.Profile{
		7: {UserID: 7, Bio: "reads comics", AvatarPath: "avatars/7.png"},
	}}
	svc := NewAuthService(
		newFakeStore(),
		profiles,
		crypto.NewPasswordHasher(bcrypt.MinCost),
		crypto.NewTokenIssuer("test-secret", time.Hour),
	)

	view, err := svc.GetProfile(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetProfile() unexpected error: %v", err)
	}
	if view == nil || view.Bio != "reads comics" || view.AvatarPath != "avatars/7.png" {
		t.Errorf("GetProfile() = %+v", view)
	}

	absent, err := svc.GetProfile(context.Background(), 8)
	if err != nil {
		t.Fatalf("GetProfile() unexpected error for absent profile: %v", err)
	}
	if absent != nil {
		t.Errorf("GetProfile() = %+v, want nil for absent profile", absent)
	}

	profiles.err = errors.New("connection refused")
	if _, err := svc.GetProfile(context.Background(), 7); err == nil {
		t.Error("GetProfile() expected error when the store fails")
	}
}

func TestIsValidationError(t *testing.T) {
	for _, err := range []error{ErrEmailRequired, ErrPasswordTooShort, ErrPasswordMismatch, ErrPasswordRequired} {
		if !IsValidationError(err) {
			t.Errorf("IsValidationError(%v) = false", err)
		}
	}
	for _, err := range []error{ErrEmailTaken, ErrInvalidCredentials, errors.New("boom")} {
		if IsValidationError(err) {
			t.Errorf("IsValidationError(%v) = true", err)
		}
	}
}
