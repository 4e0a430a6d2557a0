package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/events"
	"github.com/fieldscope/portal/internal/ratelimit"
)

// Authentication errors
var (
	// ErrInvalidCredentials is returned when the email or password is wrong
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTooManyAttempts is returned while the identifier is locked out
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

// UserService provides user management and authentication
type UserService struct {
	repo    *repos.UserRepository
	limiter *ratelimit.Limiter
}

// NewUserService creates a new user service
func NewUserService(repo *repos.UserRepository, limiter *ratelimit.Limiter) *UserService {
	return &UserService{repo: repo, limiter: limiter}
}

// Authenticate verifies a credential pair. Failed attempts count against
// the email's lockout budget; a successful login clears it and records a
// login audit event.
func (s *UserService) Authenticate(ctx context.Context, email, password, origin string) (*models.User, error) {
	allowed, retryAfter, err := s.limiter.Check(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check login attempts: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: retry in %s", ErrTooManyAttempts, retryAfter.Round(time.Second))
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil || user == nil || !user.CheckPassword(password) {
		if recErr := s.limiter.Record(ctx, email, false); recErr != nil {
			return nil, fmt.Errorf("failed to record login attempt: %w", recErr)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Record(ctx, email, true); err != nil {
		return nil, fmt.Errorf("failed to clear login attempts: %w", err)
	}

	details, _ := json.Marshal(map[string]string{"email": user.Email})
	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        user.ID,
		Action:        models.AuditActionLogin,
		Details:       details,
		OriginAddress: origin,
	})

	return user, nil
}

// Logout records a logout audit event
func (s *UserService) Logout(ctx context.Context, userID uint, origin string) {
	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        userID,
		Action:        models.AuditActionLogout,
		OriginAddress: origin,
	})
}

// Create registers a new user with the given plaintext password
func (s *UserService) Create(ctx context.Context, user *models.User, password string, actorID uint, origin string) error {
	user.SetPassword(password)
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]interface{}{"email": user.Email, "role": user.Role})
	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        actorID,
		Action:        models.AuditActionAddUser,
		TargetID:      &user.ID,
		Details:       details,
		OriginAddress: origin,
	})
	return nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// GetByEmail retrieves a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// List retrieves users
func (s *UserService) List(ctx context.Context, opts *models.ListOptions) ([]models.User, error) {
	return s.repo.GetUsers(ctx, opts)
}

// Count returns the number of users
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id uint, actorID uint, origin string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	events.Publish(events.Event{
		Type:          events.EventAuditRecorded,
		UserID:        actorID,
		Action:        models.AuditActionDeleteUser,
		TargetID:      &id,
		OriginAddress: origin,
	})
	return nil
}
