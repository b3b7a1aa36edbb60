// Package classroom holds state shared by the live-classroom domain modules:
// sentinel errors and the per-session write guard every mutation goes through.
package classroom

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrBanned           = errors.New("user is banned from this session")
)

// LockActiveSession verifies the session exists and is active, and takes its
// row lock for the remainder of tx. All mutations of a session's child rows
// funnel through this guard, so concurrent writers for the same session are
// serialized by the storage layer and the loser sees a clean error instead of
// corrupted state. The guard writes updated_at rather than re-writing status
// because MySQL reports zero affected rows for no-change updates.
func LockActiveSession(tx *gorm.DB, sessionID string) error {
	return lockSession(tx, sessionID, true)
}

// LockSession is LockActiveSession without the active-status requirement.
// Used by operations that remain legal on pending or ended sessions.
func LockSession(tx *gorm.DB, sessionID string) error {
	return lockSession(tx, sessionID, false)
}

func lockSession(tx *gorm.DB, sessionID string, requireActive bool) error {
	q := tx.Model(&models.ClassSessionModel{}).Where("id = ?", sessionID)
	if requireActive {
		q = q.Where("status = ?", models.SessionActive)
	}
	res := q.Update("updated_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.ClassSessionModel{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrSessionNotFound
	}
	return ErrSessionNotActive
}

// IsBanned reports whether the user is excluded from the session.
func IsBanned(db *gorm.DB, sessionID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.SessionBanModel{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	return count > 0, err
}
