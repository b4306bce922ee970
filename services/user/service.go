package user

import (
	"context"
	"fmt"
	"time"

	"platepick/models"
	"platepick/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenDuration = 24 * time.Hour

// Register creates an account and signs the user in.
func (s *DefaultUserService) Register(username, email, password string) (*AuthResponse, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	available, err := s.Repo.IsAvailable(email, username)
	if err != nil {
		utils.GetLogger().Error("Register: availability check failed", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	if !available {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("Register: failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	userObj := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	token, err := utils.GenerateToken(userObj.ID, userObj.Email, tokenDuration)
	if err != nil {
		utils.GetLogger().Error("Register: failed to generate auth token", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	userObj.TokenHash = utils.HashToken(token)

	if err := s.Repo.Create(&userObj); err != nil {
		utils.GetLogger().Error("Register: failed to create user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	return &AuthResponse{
		ID:       userObj.ID,
		Token:    token,
		Username: userObj.Username,
		Email:    userObj.Email,
	}, nil
}

// Authenticate verifies credentials and issues a fresh token, invalidating
// the previous one.
func (s *DefaultUserService) Authenticate(email, password string) (*AuthResponse, error) {
	userRec, err := s.Repo.GetByEmail(email)
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if userRec == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userRec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(userRec.ID, userRec.Email, tokenDuration)
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to generate token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	tokenHash := utils.HashToken(token)

	updateDoc := bson.M{"$set": bson.M{
		"token_hash": tokenHash,
		"updated_at": time.Now(),
	}}
	if err := s.Repo.UpdateWithDocument(userRec.ID, updateDoc); err != nil {
		utils.GetLogger().Error("Authenticate: failed to store token hash", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	// Drop any cached hash so the middleware picks up the new token.
	cacheKey := utils.AuthCachePrefix + userRec.ID
	if err := utils.GetAuthCacheClient().Del(context.Background(), cacheKey).Err(); err != nil {
		utils.GetLogger().Warn("Authenticate: failed to clear token cache", zap.Error(err))
	}

	return &AuthResponse{
		ID:       userRec.ID,
		Token:    token,
		Username: userRec.Username,
		Email:    userRec.Email,
	}, nil
}

// GetUserByID fetches a profile.
func (s *DefaultUserService) GetUserByID(userID string) (*models.User, error) {
	return s.Repo.GetByID(userID)
}

// UpdateUser applies the mutable profile fields.
func (s *DefaultUserService) UpdateUser(req models.UserUpdateRequest) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if req.Username != "" {
		set["username"] = req.Username
	}
	if req.Email != "" {
		set["email"] = req.Email
	}
	if err := s.Repo.UpdateWithDocument(req.ID, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.Repo.GetByID(req.ID)
}

// DeleteUser removes the account and its auth cache entry.
func (s *DefaultUserService) DeleteUser(userID string) error {
	if err := s.Repo.Delete(userID); err != nil {
		return err
	}
	cacheKey := utils.AuthCachePrefix + userID
	if err := utils.GetAuthCacheClient().Del(context.Background(), cacheKey).Err(); err != nil {
		utils.GetLogger().Warn("DeleteUser: failed to clear token cache", zap.Error(err))
	}
	return nil
}

// RevokeAuthToken signs the user out everywhere.
func (s *DefaultUserService) RevokeAuthToken(userID string) error {
	updateDoc := bson.M{"$set": bson.M{
		"token_hash": "",
		"updated_at": time.Now(),
	}}
	if err := s.Repo.UpdateWithDocument(userID, updateDoc); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	cacheKey := utils.AuthCachePrefix + userID
	return utils.GetAuthCacheClient().Del(context.Background(), cacheKey).Err()
}
