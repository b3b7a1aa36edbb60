package ban

import "errors"

type BanUserDTO struct {
	UserID string `json:"user_id" binding:"required"`
	Reason string `json:"reason"  binding:"max=500"`
}

var errUserNotFound = errors.New("target user not found")
