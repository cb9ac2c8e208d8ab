// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/signin/internal/server/auth"
)

// Account is a staff member's identity record. Email is the login
// identifier and is unique across all accounts.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Title        string
	Phone        string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	LastLogin    *time.Time
	DateJoined   time.Time
	UpdatedAt    time.Time
}

// NewAccount returns an Account with the record defaults applied:
// active, not staff, not superuser.
func NewAccount(email, firstName, lastName string) *Account {
	return &Account{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
}

// FullName returns the first and last name separated by a space.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// ShortName returns the first name.
func (a *Account) ShortName() string {
	return a.FirstName
}

func (a *Account) String() string {
	return a.Email
}

// SetPassword replaces the stored hash with a fresh hash of raw.
func (a *Account) SetPassword(raw string) error {
	hash, err := auth.HashPassword(raw)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// SetUnusablePassword stores a hash no password can match.
func (a *Account) SetUnusablePassword() {
	hash, err := auth.HashPassword("")
	if err != nil {
		hash = auth.UnusablePasswordPrefix
	}
	a.PasswordHash = hash
}

func (a *Account) CheckPassword(raw string) bool {
	return auth.CheckPassword(a.PasswordHash, raw)
}

func (a *Account) HasUsablePassword() bool {
	return auth.IsUsable(a.PasswordHash)
}

func (a *Account) IsStaffMember() bool     { return a.IsStaff }
func (a *Account) IsSuperuserMember() bool { return a.IsSuperuser }
func (a *Account) IsActiveMember() bool    { return a.IsActive }

// CanAccessConsole is the derived capability backed by the stored flags:
// active staff members may use the admin console.
func (a *Account) CanAccessConsole() bool {
	return a.IsActive && a.IsStaff
}
