// Package ratelimit provides a store-backed login rate limiter.
//
// Attempt counters live in the relational store rather than process memory,
// so lockouts survive restarts and are consistent across server instances.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
)

// Default limiter settings
const (
	// DefaultMaxFailures is the number of consecutive failures before lockout
	DefaultMaxFailures = 5
	// DefaultLockout is how long an identifier stays locked after exceeding the ceiling
	DefaultLockout = 15 * time.Minute
)

// Limiter tracks login failures per identifier
type Limiter struct {
	db          *gorm.DB
	maxFailures int
	lockout     time.Duration
}

// New creates a limiter with the given ceiling and lockout duration.
// Zero values fall back to the defaults.
func New(db *gorm.DB, maxFailures int, lockout time.Duration) *Limiter {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if lockout <= 0 {
		lockout = DefaultLockout
	}
	return &Limiter{
		db:          db,
		maxFailures: maxFailures,
		lockout:     lockout,
	}
}

// Check reports whether the identifier may attempt a login. When the
// identifier is locked the remaining lockout duration is returned.
func (l *Limiter) Check(ctx context.Context, identifier string) (bool, time.Duration, error) {
	var attempt models.LoginAttempt
	err := l.db.WithContext(ctx).Where("identifier = ?", identifier).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	if attempt.LockedUntil != nil {
		if remaining := time.Until(*attempt.LockedUntil); remaining > 0 {
			return false, remaining, nil
		}
	}
	return true, 0, nil
}

// Record registers the outcome of a login attempt. A success clears the
// identifier's counter; a failure increments it and locks the identifier
// once the ceiling is reached.
func (l *Limiter) Record(ctx context.Context, identifier string, success bool) error {
	if success {
		return l.db.WithContext(ctx).
			Where("identifier = ?", identifier).
			Delete(&models.LoginAttempt{}).Error
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt models.LoginAttempt
		err := tx.Where("identifier = ?", identifier).First(&attempt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			attempt = models.LoginAttempt{Identifier: identifier}
		} else if err != nil {
			return err
		}

		// A failure after an expired lockout starts a fresh window.
		if attempt.LockedUntil != nil && time.Now().After(*attempt.LockedUntil) {
			attempt.Failures = 0
			attempt.LockedUntil = nil
		}

		attempt.Failures++
		if attempt.Failures >= l.maxFailures {
			lockedUntil := time.Now().Add(l.lockout)
			attempt.LockedUntil = &lockedUntil
		}

		return tx.Save(&attempt).Error
	})
}
