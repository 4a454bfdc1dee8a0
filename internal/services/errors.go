package services

import "errors"

var (
	// Auth errors.
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Record errors.
	ErrNotFound    = errors.New("student not found")
	ErrForbidden   = errors.New("not authorized to modify this record")
	ErrIDCollision = errors.New("student id already in use")

	ErrInvalidInput = errors.New("invalid input")
)
