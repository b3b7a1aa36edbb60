package models

import "time"

// SessionStatus is the lifecycle state of a class session.
type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionActive  SessionStatus = "active"
	SessionEnded   SessionStatus = "ended"
)

// Valid reports whether the status is one of the known values.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionActive, SessionEnded:
		return true
	}
	return false
}

// SessionSettings is the versioned in-session configuration.
// Version is bumped whenever the shape of this struct changes.
const SessionSettingsVersion = 1

type SessionSettings struct {
	Version    int  `json:"version"`
	GlobalMute bool `json:"global_mute"`
}

// DefaultSessionSettings returns the settings a new session starts with.
func DefaultSessionSettings() SessionSettings {
	return SessionSettings{Version: SessionSettingsVersion}
}

// ClassSessionModel is a live classroom session. Child rows (hand raises,
// timers, polls, bans) are scoped by SessionID and never shared.
type ClassSessionModel struct {
	Base
	Title     string          `json:"title"      gorm:"not null"`
	Status    SessionStatus   `json:"status"     gorm:"index;default:'pending';not null"`
	CreatorID string          `json:"creator_id" gorm:"index;not null"`
	EndedAt   *time.Time      `json:"ended_at"`
	Settings  SessionSettings `json:"settings"   gorm:"type:longtext;serializer:json"`
}

func (ClassSessionModel) TableName() string { return "class_sessions" }

// SessionBanModel excludes a user from a session. A row forbids raising
// hands, voting and subscribing to the live stream.
type SessionBanModel struct {
	Base
	SessionID string    `json:"session_id" gorm:"uniqueIndex:idx_ban_session_user;not null"`
	UserID    string    `json:"user_id"    gorm:"uniqueIndex:idx_ban_session_user;not null"`
	Reason    string    `json:"reason"`
	BannedBy  string    `json:"banned_by"  gorm:"not null"`
	BannedAt  time.Time `json:"banned_at"  gorm:"not null"`
}

func (SessionBanModel) TableName() string { return "session_bans" }
