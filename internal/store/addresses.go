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

// AddressInput is the writable part of an address.
type AddressInput struct {
	FirstName    string  `json:"first_name" binding:"max=100"`
	LastName     string  `json:"last_name" binding:"max=100"`
	AddressLine1 string  `json:"address_line1" binding:"required,max=255"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=255"`
	City         string  `json:"city" binding:"required,max=100"`
	State        *string `json:"state" binding:"omitempty,max=100"`
	PostalCode   string  `json:"postal_code" binding:"required,max=20"`
	Country      string  `json:"country" binding:"required,max=100"`
	IsDefault    bool    `json:"is_default"`
}

func (in AddressInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.AddressLine1) == "" {
		fields["address_line1"] = "This field is required"
	}
	if strings.TrimSpace(in.City) == "" {
		fields["city"] = "This field is required"
	}
	if strings.TrimSpace(in.PostalCode) == "" {
		fields["postal_code"] = "This field is required"
	}
	if strings.TrimSpace(in.Country) == "" {
		fields["country"] = "This field is required"
	}
	if len(fields) > 0 {
		return &apperr.Error{Kind: apperr.Validation, Detail: "Invalid address", Fields: fields}
	}
	return nil
}

const addressColumns = `id, user_id, first_name, last_name, address_line1, address_line2,
	city, state, postal_code, country, is_default, created_at`

func scanAddress(row rowScanner) (models.Address, error) {
	var a models.Address
	err := row.Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	return a, err
}

// ListAddresses returns the caller's addresses, default first.
func (s *Store) ListAddresses(ctx context.Context, userID int64) ([]models.Address, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id = ? ORDER BY is_default DESC, created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	out := []models.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	return getAddress(ctx, s.DB, userID, id)
}

func getAddress(ctx context.Context, q querier, userID, id int64) (*models.Address, error) {
	a, err := scanAddress(q.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id = ? AND user_id = ?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "Address %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}

// clearDefault unsets every other default address of userID. It runs in the
// same transaction as the write that sets the new default.
func clearDefault(ctx context.Context, tx *sql.Tx, userID, keepID int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE addresses SET is_default = ? WHERE user_id = ? AND is_default = ? AND id <> ?",
		false, userID, true, keepID)
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}

// CreateAddress saves a new address. When it is the default, every other
// default of the same user is cleared first.
func (s *Store) CreateAddress(ctx context.Context, userID int64, in AddressInput) (*models.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var id int64
	err := s.withTx(ctx, serializable, func(tx *sql.Tx) error {
		if in.IsDefault {
			if err := clearDefault(ctx, tx, userID, 0); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO addresses
				(user_id, first_name, last_name, address_line1, address_line2, city, state,
				 postal_code, country, is_default, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, in.FirstName, in.LastName, in.AddressLine1, in.AddressLine2, in.City, in.State,
			in.PostalCode, in.Country, in.IsDefault, s.now())
		if err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetAddress(ctx, userID, id)
}

// UpdateAddress replaces one of the caller's addresses.
func (s *Store) UpdateAddress(ctx context.Context, userID, id int64, in AddressInput) (*models.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, serializable, func(tx *sql.Tx) error {
		if _, err := getAddress(ctx, tx, userID, id); err != nil {
			return err
		}
		if in.IsDefault {
			if err := clearDefault(ctx, tx, userID, id); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE addresses SET first_name = ?, last_name = ?, address_line1 = ?, address_line2 = ?,
				city = ?, state = ?, postal_code = ?, country = ?, is_default = ?
			WHERE id = ? AND user_id = ?`,
			in.FirstName, in.LastName, in.AddressLine1, in.AddressLine2,
			in.City, in.State, in.PostalCode, in.Country, in.IsDefault, id, userID)
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetAddress(ctx, userID, id)
}

func (s *Store) DeleteAddress(ctx context.Context, userID, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM addresses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "Address %d not found", id)
	}
	return nil
}
