package models

import "time"

// User represents an app account. Authentication here is deliberately plain
// email+password; there is no OTP or device-limit flow.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	Password     string    `bson:"-" json:"password,omitempty"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	// TokenHash is the SHA-256 of the currently issued JWT; the auth
	// middleware compares against it (via the redis cache first).
	TokenHash string    `bson:"token_hash" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserUpdateRequest carries the mutable profile fields.
type UserUpdateRequest struct {
	ID       string `json:"-"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
