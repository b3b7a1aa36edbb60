package timer

import "errors"

type StartTimerDTO struct {
	SpeakerID   string `json:"speaker_id"   binding:"required"`
	DurationSec int    `json:"duration_sec" binding:"required,gt=0,lte=3600"`
}

var (
	errTimerActive  = errors.New("another speaker already holds the floor")
	errNoActiveHand = errors.New("speaker has no queued hand-raise entry")
	errNoTimer      = errors.New("no active timer")
)
