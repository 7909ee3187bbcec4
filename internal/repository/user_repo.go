package repository

import (
	"errors"
	"fmt"

	"github.com/vinnymaker/stockapp/internal/models"
	"gorm.io/gorm"
)

// UserRepository is the database repository for users
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// LoadByUsername fetches a user by username. Returns nil when absent.
func (r *UserRepository) LoadByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %v", username, err)
	}
	return &user, nil
}

// CreateUser inserts a new user row and fills in its generated id
func (r *UserRepository) CreateUser(user *models.User) error {
	if err := r.DB.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %v", user.Username, err)
	}
	return nil
}

// UpdateUser persists changes on a detached user row
func (r *UserRepository) UpdateUser(user *models.User) error {
	if err := r.DB.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user %s: %v", user.Username, err)
	}
	return nil
}

// DeleteUser removes a user row
func (r *UserRepository) DeleteUser(user *models.User) error {
	if err := r.DB.Delete(user).Error; err != nil {
		return fmt.Errorf("failed to delete user %s: %v", user.Username, err)
	}
	return nil
}
