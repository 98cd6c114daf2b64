package models

import (
	"fmt"
	"time"
)

// User is an identity known to the platform.
//
// Users are never deleted; Deactivate anonymizes the record in place.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// UserView is the JSON projection of a User returned to clients.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// Deactivate overwrites personal data with placeholders and swaps the
// password hash for one nobody knows. Changing the hash also kills every
// reset link issued for this account.
func (u *User) Deactivate(passwordHash, emailDomain string) {
	u.Name = fmt.Sprintf("Anonymized %s", u.ID)
	u.Email = fmt.Sprintf("unknown%s@%s", u.ID, emailDomain)
	u.PasswordHash = passwordHash
	u.Active = false
}
