package models

import "time"

// HandStatus is the lifecycle state of a hand-raise entry.
type HandStatus string

const (
	HandQueued    HandStatus = "queued"
	HandSpeaking  HandStatus = "speaking"
	HandDone      HandStatus = "done"
	HandCancelled HandStatus = "cancelled"
)

// Terminal reports whether the status ends the entry's lifecycle.
func (s HandStatus) Terminal() bool {
	return s == HandDone || s == HandCancelled
}

// NonTerminalHandStatuses are the states in which an entry occupies the queue.
var NonTerminalHandStatuses = []HandStatus{HandQueued, HandSpeaking}

// HandRaiseModel is one participant's request to speak. The integer primary
// key is the queue order: FIFO by RaisedAt, ties broken by ascending ID.
// At most one row per (SessionID, UserID) may be in a non-terminal status.
type HandRaiseModel struct {
	ID         uint       `json:"id"          gorm:"primaryKey;autoIncrement"`
	SessionID  string     `json:"session_id"  gorm:"index:idx_hand_session_status;not null"`
	UserID     string     `json:"user_id"     gorm:"index;not null"`
	Status     HandStatus `json:"status"      gorm:"index:idx_hand_session_status;default:'queued';not null"`
	RaisedAt   time.Time  `json:"raised_at"   gorm:"not null"`
	SpeakingAt *time.Time `json:"speaking_at"`
	EndedAt    *time.Time `json:"ended_at"`
}

func (HandRaiseModel) TableName() string { return "hand_raises" }

// SpeechTimerModel records which participant holds the floor and for how
// long. At most one row per session has EndedAt = NULL. Remaining time is
// always derived from StartedAt, never stored.
type SpeechTimerModel struct {
	Base
	SessionID   string     `json:"session_id"   gorm:"index;not null"`
	UserID      string     `json:"user_id"      gorm:"index;not null"`
	DurationSec int        `json:"duration_sec" gorm:"not null"`
	StartedAt   time.Time  `json:"started_at"   gorm:"not null"`
	EndedAt     *time.Time `json:"ended_at"     gorm:"index"`
}

func (SpeechTimerModel) TableName() string { return "speech_timers" }
