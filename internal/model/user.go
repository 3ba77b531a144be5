// Package model defines database models
package model

import "time"

// User is a registered account. Email is always stored normalized.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
