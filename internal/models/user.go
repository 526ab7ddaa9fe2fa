package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"user_id"`
	FullName  string    `gorm:"not null" json:"fullname"`
	Username  string    `gorm:"index;not null" json:"username"` // not unique, email is the identity key
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	Password  string    `gorm:"not null" json:"-"`                           // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
}
