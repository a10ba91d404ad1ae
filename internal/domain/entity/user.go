package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the account domain. Email and Username are
// stored lowercase and are each globally unique; Email is the login
// identifier. Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID              string
	Email           string
	Username        string
	FirstName       string
	LastName        string
	PhoneNumber     string
	DateOfBirth     *time.Time
	PasswordHash    string
	IsActive        bool
	IsStaff         bool
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile holds the one-to-one extension of a User. It is created together
// with the User at registration and removed with it (FK cascade).
type Profile struct {
	UserID             string
	AvatarURL          string
	Bio                string
	Location           string
	Website            string
	EmailNotifications bool
	MarketingEmails    bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
