// Package store owns the account table
package store

import (
	"citricloud/backend/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("account already exists")
)

// PasswordHasher turns a plaintext password into a storable hash
type PasswordHasher interface {
	HashPassword(p string) (string, error)
}

type UserStore struct {
	DB     *gorm.DB
	Hasher PasswordHasher
}

func NewUserStore(db *gorm.DB, h PasswordHasher) *UserStore {
	return &UserStore{DB: db, Hasher: h}
}

// FindByEmail expects a normalized email
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := s.DB.WithContext(ctx).
		Where("email = ?", email).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to look up user by email, %w", err)
	}

	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User

	err := s.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to look up user by id, %w", err)
	}

	return &user, nil
}

// Create hashes password and inserts a new account for the normalized email.
// ErrEmailTaken is returned if the email is already registered.
func (s *UserStore) Create(ctx context.Context, email, password string) (*model.User, error) {
	hash, err := s.Hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return user, nil
}
