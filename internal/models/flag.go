package models

import (
	"time"
)

const DefaultFlagReason = "No reason provided"

// FlaggedCrime is a moderation record linking a crime to the admin who
// flagged it.
type FlaggedCrime struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CrimeID   uint      `gorm:"not null;index" json:"crime_id"`
	FlaggedBy uint      `gorm:"not null;index" json:"flagged_by"`
	Reason    string    `gorm:"size:200;not null" json:"reason"`
	IsFlagged bool      `gorm:"not null" json:"is_flagged"`
	CreatedAt time.Time `json:"created_at"`
}
