package user

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("a user with this email or username already exists")
	ErrMissingFields      = errors.New("username, email, and password are required")
)
