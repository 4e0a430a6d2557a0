package models

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"
)

// UserRole represents the role of a user in the system
type UserRole string

// User role constants
const (
	// UserRoleAdmin can manage users, companies and audit logs
	UserRoleAdmin UserRole = "admin"
	// UserRoleUser can request and manage reports
	UserRoleUser UserRole = "user"
	// UserRoleViewer has read-only access
	UserRoleViewer UserRole = "viewer"
)

// ParseUserRole converts a string representation of a user role to UserRole type
func ParseUserRole(str string) (UserRole, error) {
	switch str {
	case string(UserRoleAdmin):
		return UserRoleAdmin, nil
	case string(UserRoleUser):
		return UserRoleUser, nil
	case string(UserRoleViewer):
		return UserRoleViewer, nil
	default:
		return UserRoleUser, fmt.Errorf("invalid user role: %s", str)
	}
}

// String returns the string representation of the user role
func (r UserRole) String() string {
	return string(r)
}

// User represents an account that can log into the portal
type User struct {
	gorm.Model
	Name         string   `json:"name" gorm:"not null"`
	Email        string   `json:"email" gorm:"not null;unique"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"not null;index"`
}

// HashPassword returns the hex-encoded digest stored for a credential
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// SetPassword replaces the stored credential digest
func (u *User) SetPassword(password string) {
	u.PasswordHash = HashPassword(password)
}

// CheckPassword reports whether the given password matches the stored digest
func (u *User) CheckPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(HashPassword(password))) == 1
}

// Validate ensures that the user data is valid
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("user email cannot be empty")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("user credential cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new user
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.Role == "" {
		u.Role = UserRoleUser
	}
	return u.Validate()
}
