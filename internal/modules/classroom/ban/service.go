package ban

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/live"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	notifier *live.Notifier
}

func NewService(db *gorm.DB, notifier *live.Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// Ban excludes the user from the session and, in the same transaction,
// cancels any queued/speaking hand-raise entry and ends any active timer of
// theirs. A duplicate ban is already-applied, not an error. Unbanning goes
// through the general moderation tooling, not this service.
func (s *Service) Ban(sessionID, targetUserID, reason, bannedBy string) (*models.SessionBanModel, error) {
	var result models.SessionBanModel
	applied := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := classroom.LockSession(tx, sessionID); err != nil {
			return err
		}

		var userCount int64
		if err := tx.Model(&models.UserModel{}).Where("id = ?", targetUserID).Count(&userCount).Error; err != nil {
			return err
		}
		if userCount == 0 {
			return errUserNotFound
		}

		var existing models.SessionBanModel
		err := tx.Where("session_id = ? AND user_id = ?", sessionID, targetUserID).First(&existing).Error
		switch {
		case err == nil:
			result = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// proceed
		default:
			return err
		}

		now := time.Now()
		result = models.SessionBanModel{
			SessionID: sessionID,
			UserID:    targetUserID,
			Reason:    reason,
			BannedBy:  bannedBy,
			BannedAt:  now,
		}
		if err := tx.Create(&result).Error; err != nil {
			return err
		}

		err = tx.Model(&models.HandRaiseModel{}).
			Where("session_id = ? AND user_id = ? AND status IN ?",
				sessionID, targetUserID, models.NonTerminalHandStatuses).
			Updates(map[string]interface{}{"status": models.HandCancelled, "ended_at": &now}).Error
		if err != nil {
			return err
		}

		err = tx.Model(&models.SpeechTimerModel{}).
			Where("session_id = ? AND user_id = ? AND ended_at IS NULL", sessionID, targetUserID).
			Update("ended_at", &now).Error
		if err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.notifier.Kick(sessionID, targetUserID)
		s.notifier.Emit(sessionID, live.Event{
			Name: live.EventUserKicked,
			Payload: map[string]interface{}{
				"user_id": targetUserID,
				"reason":  reason,
			},
		})
	}
	return &result, nil
}

// List returns all bans for a session, newest first.
func (s *Service) List(sessionID string) ([]models.SessionBanModel, error) {
	var bans []models.SessionBanModel
	err := s.db.
		Where("session_id = ?", sessionID).
		Order("banned_at DESC").
		Find(&bans).Error
	return bans, err
}
