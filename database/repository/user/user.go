package userRepo

import (
	"platepick/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository abstracts user persistence.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByIDWithProjection(id string, projection bson.M) (*models.User, error)
	UpdateWithDocument(id string, updateDoc bson.M) error
	Delete(id string) error
	IsAvailable(email, username string) (bool, error)
}
