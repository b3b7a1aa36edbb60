package snapshot

import (
	"time"

	"github.com/classhall/core/internal/models"
)

// SessionView is the session row as exposed to subscribers.
type SessionView struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Status    models.SessionStatus `json:"status"`
	CreatorID string               `json:"creator_id"`
	Created   time.Time            `json:"created"`
	EndedAt   *time.Time           `json:"ended_at,omitempty"`
}

// QueueEntry is one hand-raise entry in queue order. Position is 1-indexed
// among queued entries; the speaking entry holds the floor and has none.
type QueueEntry struct {
	ID         uint              `json:"id"`
	UserID     string            `json:"user_id"`
	Status     models.HandStatus `json:"status"`
	Position   int               `json:"position,omitempty"`
	RaisedAt   time.Time         `json:"raised_at"`
	SpeakingAt *time.Time        `json:"speaking_at,omitempty"`
}

// TimerView is the active speech timer with the remaining time computed at
// snapshot time, never read from storage.
type TimerView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DurationSec  int       `json:"duration_sec"`
	StartedAt    time.Time `json:"started_at"`
	RemainingSec int       `json:"remaining_sec"`
}

// OptionTally is one poll option with its live vote count.
type OptionTally struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Ordinal int    `json:"ordinal"`
	Votes   int64  `json:"votes"`
}

// PollView is the most recently created poll with live tallies.
type PollView struct {
	ID         string            `json:"id"`
	Question   string            `json:"question"`
	Type       models.PollType   `json:"type"`
	Anonymous  bool              `json:"anonymous"`
	Status     models.PollStatus `json:"status"`
	Options    []OptionTally     `json:"options"`
	TotalVotes int64             `json:"total_votes"`
}

// SessionSnapshot is the full point-in-time view of a session's live state,
// pushed to every subscriber after each mutation so clients self-heal.
type SessionSnapshot struct {
	Session     SessionView            `json:"session"`
	Queue       []QueueEntry           `json:"queue"`
	Timer       *TimerView             `json:"timer,omitempty"`
	Poll        *PollView              `json:"poll,omitempty"`
	Settings    models.SessionSettings `json:"settings"`
	GeneratedAt time.Time              `json:"generated_at"`
}
