package models

import "time"

type User struct {
	ID        string
	Name      string
	Title     string
	Role      string
	Email     string
	Password  string
	IsAdmin   bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRef is a user reference resolved to display fields.
type UserRef struct {
	ID    string
	Name  string
	Title string
	Role  string
	Email string
}
