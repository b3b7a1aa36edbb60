package user

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
)

type RegisterDTO struct {
	Username   string `json:"username"    binding:"required,min=3,max=32,alphanum"`
	Name       string `json:"name"        binding:"max=64"`
	Password   string `json:"password"    binding:"required,min=8,max=128"`
	InviteCode string `json:"invite_code" binding:"required"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetRoleDTO struct {
	Role models.UserRole `json:"role" binding:"required"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *models.UserModel `json:"user"`
}

var (
	errUsernameTaken   = errors.New("username already taken")
	errBadCredentials  = errors.New("invalid username or password")
	errInvalidInvite   = errors.New("invite code is invalid, used or expired")
	errUnknownRole     = errors.New("unknown role")
	errUserNotFound    = errors.New("user not found")
	errLastAdminLocked = errors.New("cannot demote the last admin")
)

const tokenTTL = 7 * 24 * time.Hour
