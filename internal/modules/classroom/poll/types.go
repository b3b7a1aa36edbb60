package poll

import "errors"

const (
	minOptions = 2
	maxOptions = 10
)

type CreatePollDTO struct {
	Question  string   `json:"question" binding:"required,max=500"`
	Options   []string `json:"options"  binding:"required,min=2,max=10,dive,required,max=200"`
	Type      string   `json:"type"`
	Anonymous bool     `json:"anonymous"`
}

type CastVoteDTO struct {
	Selected []string `json:"selected" binding:"required,min=1"`
}

var (
	errPollNotFound     = errors.New("poll not found")
	errPollClosed       = errors.New("poll is closed")
	errWrongSession     = errors.New("poll belongs to a different session")
	errSingleChoice     = errors.New("single-choice poll takes exactly one option")
	errAlreadyVoted     = errors.New("a different option was already chosen")
	errUnknownOption    = errors.New("selected option does not belong to this poll")
	errUnknownPollType  = errors.New("unknown poll type")
	errBadOptionCount   = errors.New("a poll needs between 2 and 10 options")
)
