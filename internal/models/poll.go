package models

// PollType determines how many options a voter may select.
type PollType string

const (
	PollSingle   PollType = "single"
	PollMultiple PollType = "multiple"
)

// Valid reports whether the type is one of the known values.
func (t PollType) Valid() bool {
	return t == PollSingle || t == PollMultiple
}

// PollStatus is the lifecycle state of a poll.
type PollStatus string

const (
	PollOpen   PollStatus = "open"
	PollClosed PollStatus = "closed"
)

// PollModel is one in-session question with ordered options.
type PollModel struct {
	Base
	SessionID string     `json:"session_id" gorm:"index;not null"`
	Question  string     `json:"question"   gorm:"not null"`
	Type      PollType   `json:"type"       gorm:"default:'single';not null"`
	Anonymous bool       `json:"anonymous"`
	Status    PollStatus `json:"status"     gorm:"index;default:'open';not null"`
	CreatorID string     `json:"creator_id" gorm:"not null"`
}

func (PollModel) TableName() string { return "polls" }

// PollOptionModel is one selectable answer; Ordinal is unique per poll.
type PollOptionModel struct {
	Base
	PollID  string `json:"poll_id" gorm:"uniqueIndex:idx_option_poll_ordinal;not null"`
	Label   string `json:"label"   gorm:"not null"`
	Ordinal int    `json:"ordinal" gorm:"uniqueIndex:idx_option_poll_ordinal;not null"`
}

func (PollOptionModel) TableName() string { return "poll_options" }

// PollVoteModel is one user's vote for one option. The composite unique
// index makes a duplicate (poll, option, user) insert fail at the storage
// layer; tallies are always live counts over these rows.
type PollVoteModel struct {
	ID       uint   `json:"id"        gorm:"primaryKey;autoIncrement"`
	PollID   string `json:"poll_id"   gorm:"uniqueIndex:idx_vote_poll_option_user;not null"`
	OptionID string `json:"option_id" gorm:"uniqueIndex:idx_vote_poll_option_user;not null"`
	UserID   string `json:"user_id"   gorm:"uniqueIndex:idx_vote_poll_option_user;index;not null"`
}

func (PollVoteModel) TableName() string { return "poll_votes" }
