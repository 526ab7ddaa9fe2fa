package models

import (
	"time"
)

// Vote is the identified ledger: one row per (crime, user). The composite
// unique index is the authoritative guard against concurrent duplicates, the
// handler pre-check is only an optimization.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"vote_id"`
	CrimeID   uint      `gorm:"not null;uniqueIndex:idx_crime_user_vote" json:"crime_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_crime_user_vote" json:"user_id"`
	VoteType  string    `gorm:"size:20;not null" json:"vote_type"` // open string, e.g. "up" / "down"
	CreatedAt time.Time `json:"created_at"`
}

// AnonymousVote is the anonymous ledger: one row per (crime, ip). Kept as a
// separate table because its uniqueness domain differs from the identified one.
type AnonymousVote struct {
	ID        uint      `gorm:"primaryKey" json:"vote_id"`
	CrimeID   uint      `gorm:"not null;uniqueIndex:idx_crime_ip_vote" json:"crime_id"`
	IPAddress string    `gorm:"size:45;not null;uniqueIndex:idx_crime_ip_vote" json:"ip_address"`
	VoteType  string    `gorm:"size:20;not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}
