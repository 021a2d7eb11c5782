package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/models"
)

const userColumns = "id, email, username, password_hash, first_name, last_name, is_staff, created_at"

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsStaff, &u.CreatedAt)
	return u, err
}

// CreateUser inserts u with an already hashed password. Email and username
// are unique; a taken one is a Conflict.
func (s *Store) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		u.Username = u.Email
	}
	u.CreatedAt = s.now()

	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		taken, err := exists(ctx, tx, "SELECT 1 FROM users WHERE email = ?", u.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apperr.New(apperr.Conflict, "An account with this email already exists")
		}
		taken, err = exists(ctx, tx, "SELECT 1 FROM users WHERE username = ?", u.Username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return apperr.New(apperr.Conflict, "This username is already taken")
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO users (email, username, password_hash, first_name, last_name, is_staff, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.Email, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if u.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("user id: %w", err)
		}

		_, err = tx.ExecContext(ctx, "INSERT INTO user_profiles (user_id) VALUES (?)", u.ID)
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail is used by login; the returned user carries its password hash.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "User %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// IsStaff reports whether userID may use the admin endpoints.
func (s *Store) IsStaff(ctx context.Context, userID int64) (bool, error) {
	var staff bool
	err := s.DB.QueryRowContext(ctx, "SELECT is_staff FROM users WHERE id = ?", userID).Scan(&staff)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check staff: %w", err)
	}
	return staff, nil
}

// Me is the current user together with their profile.
type Me struct {
	models.User
	Profile models.UserProfile `json:"profile"`
}

func (s *Store) GetMe(ctx context.Context, userID int64) (*Me, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	me := &Me{User: *u, Profile: models.UserProfile{UserID: userID}}
	err = s.DB.QueryRowContext(ctx,
		"SELECT bio, profile_picture, phone_number FROM user_profiles WHERE user_id = ?", userID,
	).Scan(&me.Profile.Bio, &me.Profile.ProfilePicture, &me.Profile.PhoneNumber)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return me, nil
}

// ProfileUpdate holds the editable account fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName      *string `json:"first_name" binding:"omitempty,max=150"`
	LastName       *string `json:"last_name" binding:"omitempty,max=150"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,max=500"`
	PhoneNumber    *string `json:"phone_number" binding:"omitempty,max=20"`
}

// UpdateMe applies in to the user row and upserts the profile row.
func (s *Store) UpdateMe(ctx context.Context, userID int64, in ProfileUpdate) (*Me, error) {
	current, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	pick := func(v *string, fallback string) string {
		if v != nil {
			return strings.TrimSpace(*v)
		}
		return fallback
	}
	pickNull := func(v *string, fallback *string) *string {
		if v != nil {
			return nullString(strings.TrimSpace(*v))
		}
		return fallback
	}

	err = s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE users SET first_name = ?, last_name = ? WHERE id = ?",
			pick(in.FirstName, current.FirstName), pick(in.LastName, current.LastName), userID); err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		bio := pickNull(in.Bio, current.Profile.Bio)
		pic := pickNull(in.ProfilePicture, current.Profile.ProfilePicture)
		phone := pickNull(in.PhoneNumber, current.Profile.PhoneNumber)
		hasProfile, err := exists(ctx, tx, "SELECT 1 FROM user_profiles WHERE user_id = ?", userID)
		if err != nil {
			return fmt.Errorf("check profile: %w", err)
		}
		if hasProfile {
			_, err = tx.ExecContext(ctx,
				"UPDATE user_profiles SET bio = ?, profile_picture = ?, phone_number = ? WHERE user_id = ?",
				bio, pic, phone, userID)
		} else {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO user_profiles (user_id, bio, profile_picture, phone_number) VALUES (?, ?, ?, ?)",
				userID, bio, pic, phone)
		}
		if err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetMe(ctx, userID)
}
