package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles recognized by the permission table. Any other value resolves to
// zero permissions.
const (
	RoleEmployee   = "employee"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User represents a staff account in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"` // 3-50 chars, alphanumeric + underscore
	PasswordHash string         `gorm:"not null" json:"-"`                    // bcrypt hash, never serialized
	Role         string         `gorm:"not null;default:'employee'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether role is one of the three known roles
func IsValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
