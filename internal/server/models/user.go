// Package models holds the persisted entities of the API server.
package models

import "time"

// User is an account. PasswordHash never leaves the service layer.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Name          *string
	EmailVerified bool
	Image         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastSigninAt  *time.Time
}
