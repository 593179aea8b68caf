package models

import (
	"database/sql"
	"time"
)

// Roles assigned to users at registration.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
type User struct {
	ID              int            `db:"id" json:"id"`
	Username        string         `db:"username" json:"username"`
	Email           string         `db:"email" json:"email,omitempty"`
	PasswordHash    string         `db:"password_hash" json:"-"`
	Role            string         `db:"role" json:"role"`
	SecurityAnswer1 sql.NullString `db:"security_answer_1" json:"-"`
	SecurityAnswer2 sql.NullString `db:"security_answer_2" json:"-"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user carries the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasSecurityAnswers reports whether both recovery answers are on file.
func (u User) HasSecurityAnswers() bool {
	return u.SecurityAnswer1.Valid && u.SecurityAnswer2.Valid
}

// PublicUser is the API-facing view of another user.
type PublicUser struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}
