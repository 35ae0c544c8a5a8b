package model

import "time"

// User is an account that can act as a driver, a passenger, or both
// depending on the role stored with it.  Passwords are stored only as
// bcrypt hashes.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login email, lower-cased.
//  PasswordHash – bcrypt hash of the password.
//  Role         – account role (DRIVER, PASSENGER).
//  CreatedAt    – creation timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
