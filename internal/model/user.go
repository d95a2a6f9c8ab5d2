package model

import "time"

// User is a credential record in the database. PasswordHash never leaves
// the auth subsystem; API responses carry UserView instead.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the per-user profile row created alongside registration.
type Profile struct {
	ID         int64
	UserID     int64
	Bio        string
	AvatarPath string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserView is the public projection of a user, safe for API responses.
type UserView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResult is the uniform outcome of register and login: a success flag
// and message, plus a session token and user view on success.
type AuthResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *UserView `json:"user,omitempty"`
}

// ProfileView is the public projection of a profile, returned by /api/auth/me.
type ProfileView struct {
	Bio        string `json:"bio,omitempty"`
	AvatarPath string `json:"avatarPath,omitempty"`
}
