// Package domain contains entities without logic, just meta-data.
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const MaxUsernameLen = 20

type UserID string

type User struct {
	ID       UserID `json:"userId"`
	Username string `json:"username"`
}

// NewUser validates the display name and allocates a fresh user id.
// Usernames are self-declared; uniqueness inside a room is not enforced.
func NewUser(username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len([]rune(username)) > MaxUsernameLen {
		return nil, fmt.Errorf("%w: username exceeds %d characters", ErrValidation, MaxUsernameLen)
	}
	return &User{ID: UserID(uuid.NewString()), Username: username}, nil
}
