package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	DisplayName  string   `gorm:"not null" json:"display_name"`
	PhotoURL     *string  `json:"photo_url,omitempty"`
	Role         UserRole `gorm:"type:varchar(20);default:'user'" json:"role"`

	// Number of reviews this user has published. Adjusted in the same
	// transaction that creates or retracts a review.
	ReviewsCount int `gorm:"default:0" json:"reviews_count"`
}

func (User) TableName() string {
	return "users"
}
