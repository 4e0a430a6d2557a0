package models

import "time"

// LoginAttempt tracks failed login attempts per identifier. It backs the
// login rate limiter so lockouts survive process restarts and are shared
// across server instances.
type LoginAttempt struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	Identifier  string     `json:"identifier" gorm:"not null;uniqueIndex;size:255"`
	Failures    int        `json:"failures" gorm:"not null;default:0"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
