package models

import "time"

// UserRole classifies what a user may do platform-wide.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// IsModerator reports whether the role carries session-moderation rights.
func (r UserRole) IsModerator() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// UserModel represents a platform account.
type UserModel struct {
	Base
	Username      string     `json:"username" gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Password      string     `json:"-"        gorm:"not null"`
	Role          UserRole   `json:"role"     gorm:"index;default:'student';not null"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

// InviteModel is a registration invite code, optionally pinned to a role.
type InviteModel struct {
	Base
	Code      string     `json:"code"       gorm:"uniqueIndex;not null"`
	Role      UserRole   `json:"role"       gorm:"default:'student'"`
	CreatedBy string     `json:"created_by" gorm:"index;not null"`
	UsedBy    string     `json:"used_by"    gorm:"index"`
	UsedAt    *time.Time `json:"used_at"`
	ExpiresAt *time.Time `json:"expires_at" gorm:"index"`
}

func (InviteModel) TableName() string { return "invites" }
