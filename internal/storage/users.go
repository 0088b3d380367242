package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speakersite/internal/models"
)

const userColumns = `id, username, name, password_hash, role, created_at, last_signed_in`

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, role models.UserRole) (*models.User, error) {
	now := time.Now().UTC()
	id, err := insertID(ctx, s.db,
		`INSERT INTO users (username, password_hash, role, created_at, last_signed_in) VALUES (?, ?, ?, ?, ?)`,
		username, passwordHash, role, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &models.User{ID: id, Username: username, PasswordHash: passwordHash, Role: role, CreatedAt: now, LastSignedIn: now}, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) TouchUserSignIn(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, `UPDATE users SET last_signed_in = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("touch user sign in: %w", err)
	}
	return nil
}

func (s *Store) InsertToken(ctx context.Context, token string, userID int64, createdAt, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO user_tokens (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`),
		token, userID, createdAt, expiresAt)
	return err
}

// LookupToken returns the owner and expiry of a token, or ErrNotFound.
func (s *Store) LookupToken(ctx context.Context, token string) (int64, time.Time, error) {
	var row struct {
		UserID    int64     `db:"user_id"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT user_id, expires_at FROM user_tokens WHERE token = ?`), token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, time.Time{}, ErrNotFound
		}
		return 0, time.Time{}, fmt.Errorf("lookup token: %w", err)
	}
	return row.UserID, row.ExpiresAt, nil
}

func (s *Store) DeleteToken(ctx context.Context, token string) error {
	if _, err := s.exec(ctx, `DELETE FROM user_tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
