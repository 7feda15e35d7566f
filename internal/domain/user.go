package domain

import (
	"time"
)

// User is an account that can own listings and submit applications.
// Role is one of constants.ValidRoles (user/realtor/admin).
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserName     string    `gorm:"column:user_name;not null;uniqueIndex" json:"user_name"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Phone        string    `gorm:"column:phone" json:"phone"`
	Role         string    `gorm:"column:role;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
