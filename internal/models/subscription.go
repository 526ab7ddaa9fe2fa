package models

import (
	"time"
)

// Subscription is a geo-radius alert configuration. The unique index on
// UserID enforces the one-per-user invariant even when two upserts race.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Radius    float64   `gorm:"not null" json:"radius"` // km
	IsActive  bool      `gorm:"not null" json:"is_active"` // no column default, handlers always set it explicitly
	CreatedAt time.Time `json:"created_at"`
}
