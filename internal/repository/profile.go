package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ctoon/ctoon-api/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository reads the per-user profile rows created at registration.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID retrieves the profile belonging to the given user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	query := `SELECT id, user_id, COALESCE(bio, ''), COALESCE(avatar_path, ''), created_at, updated_at
		FROM profiles WHERE user_id = ?`

	profile := &model.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.Bio, &profile.AvatarPath,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return profile, nil
}
