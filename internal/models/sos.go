package models

import (
	"time"
)

// SOSAlert may be sent anonymously, so UserID is nullable.
type SOSAlert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Message   string    `gorm:"type:text" json:"message"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}
