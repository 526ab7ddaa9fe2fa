package models

import (
	"time"
)

type Crime struct {
	ID          uint      `gorm:"primaryKey" json:"crime_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CrimeType   string    `gorm:"size:100;not null;index" json:"crime_type"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Latitude    float64   `gorm:"not null" json:"latitude"`
	Longitude   float64   `gorm:"not null" json:"longitude"`
	MediaURL    *string   `json:"media_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
