// Package model contains the tracker's entities and sentinel errors.
package model

import "errors"

var (
	// ErrNotFound is returned when a resource does not exist or is not
	// owned by the requesting user. The two cases are deliberately
	// indistinguishable so that one user cannot probe for another
	// user's resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals failed input validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken signals a registration with an already-used email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
