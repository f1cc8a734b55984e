package services

import (
	"context"
	"errors"
	"fmt"

	"blogicum/internal/models"
	"blogicum/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Users handles registration, login and profile changes.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &user, nil
}

// Register creates a user with a hashed password.
func (s *Users) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	taken, err := s.usernameTaken(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Username: username, Email: email, Password: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate checks a username/password pair.
func (s *Users) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UpdateProfile saves the editable profile fields of user.
func (s *Users) UpdateProfile(ctx context.Context, user *models.User) error {
	taken, err := s.usernameTaken(ctx, user.Username, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}

	err = s.db.WithContext(ctx).Model(user).
		Select("first_name", "last_name", "username", "email").
		Updates(user).Error
	if err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return nil
}

func (s *Users) usernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check username %q: %w", username, err)
	}
	return n > 0, nil
}
