package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserRole controls access to the admin surface.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// UserType selects which publication channels an account may target.
type UserType string

const (
	TypeRevista     UserType = "revista"
	TypeMarketplace UserType = "marketplace"
	TypeAmbos       UserType = "ambos"
)

// UserStatus is the account-approval state. Only approved accounts may
// submit drafts or call the generation endpoints.
type UserStatus string

const (
	UserPending  UserStatus = "pending"
	UserApproved UserStatus = "approved"
	UserRejected UserStatus = "rejected"
)

func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown user role %q", s)
	}
}

func ParseUserType(s string) (UserType, error) {
	switch UserType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeRevista:
		return TypeRevista, nil
	case TypeMarketplace:
		return TypeMarketplace, nil
	case TypeAmbos:
		return TypeAmbos, nil
	default:
		return "", fmt.Errorf("unknown user type %q", s)
	}
}

func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(strings.ToLower(strings.TrimSpace(s))) {
	case UserPending:
		return UserPending, nil
	case UserApproved:
		return UserApproved, nil
	case UserRejected:
		return UserRejected, nil
	default:
		return "", fmt.Errorf("unknown user status %q", s)
	}
}

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"not null;size:200" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null;size:320" json:"email"`
	PasswordHash string         `gorm:"not null;size:100" json:"-"`
	Role         UserRole       `gorm:"size:20;default:'user'" json:"role"`
	Type         UserType       `gorm:"size:20;default:'revista'" json:"type"`
	Status       UserStatus     `gorm:"size:20;default:'pending';index" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
