package entity

import (
	"time"
)

// User is the aggregate root for the identity domain
// Passwords are stored as bcrypt hashes in Password field
//
// Cart, wishlist, posts and orders reference users by ID only.
type User struct {
	ID            string
	Email         string
	UserName      string
	Password      string
	FullName      string
	Bio           string
	Gender        string
	DateOfBirth   *time.Time
	AvatarURL     string
	AvatarMediaID string
	IsVerified    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Genders accepted on profile updates.
var Genders = []string{"male", "female", "other"}
