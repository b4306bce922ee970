package user

import (
	userRepo "platepick/database/repository/user"
	"platepick/models"
)

// UserService is the deliberately plain account layer: email+password with a
// single JWT per user. No OTP, device caps, or social auth.
type UserService interface {
	Register(username, email, password string) (*AuthResponse, error)
	Authenticate(email, password string) (*AuthResponse, error)

	GetUserByID(userID string) (*models.User, error)
	UpdateUser(req models.UserUpdateRequest) (*models.User, error)
	DeleteUser(userID string) error
	RevokeAuthToken(userID string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}

// AuthResponse contains the user's ID, token, and profile basics.
type AuthResponse struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
