// Package auth verifies user credentials against the existing personas
// database and issues the short-lived API tokens the grant endpoint
// requires.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnknownUser indicates no row exists for the username
	ErrUnknownUser = errors.New("auth: unknown user")

	// ErrInvalidCredentials indicates the password did not match
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// User is the subset of the personas row the API exposes
type User struct {
	Username string
	Nombre   string
	Apellido string
}

// CredentialStore authenticates users against the personas table
type CredentialStore struct {
	pool *pgxpool.Pool
}

// NewCredentialStore creates a credential store over an existing pool
func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

// Authenticate looks up the user and verifies the password against the
// stored bcrypt hash. Unknown users and bad passwords are distinguishable
// to the caller but must map to the same client-visible status.
func (s *CredentialStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	const query = `SELECT username, password, nombre, apellido_paterno FROM personas WHERE username = $1`

	var user User
	var hash string
	err := s.pool.QueryRow(ctx, query, username).Scan(&user.Username, &hash, &user.Nombre, &user.Apellido)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query personas: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
