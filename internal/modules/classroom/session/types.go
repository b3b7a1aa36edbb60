package session

import "errors"

type CreateSessionDTO struct {
	Title string `json:"title" binding:"required,max=200"`
}

type SetStatusDTO struct {
	Status string `json:"status" binding:"required"`
}

type UpdateSettingsDTO struct {
	GlobalMute *bool `json:"global_mute"`
}

var (
	errInvalidTransition = errors.New("invalid status transition")
	errInvalidStatus     = errors.New("unknown session status")
)
