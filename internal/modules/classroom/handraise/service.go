package handraise

import (
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

// Raise appends the user to the session's speaking queue. The session row
// lock serializes concurrent raises, so the one-non-terminal-entry-per-user
// invariant holds without a partial unique index.
func (s *Service) Raise(sessionID, userID string) (*models.HandRaiseModel, int, error) {
	var entry models.HandRaiseModel
	position := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := classroom.LockActiveSession(tx, sessionID); err != nil {
			return err
		}

		banned, err := classroom.IsBanned(tx, sessionID, userID)
		if err != nil {
			return err
		}
		if banned {
			return classroom.ErrBanned
		}

		var existing int64
		err = tx.Model(&models.HandRaiseModel{}).
			Where("session_id = ? AND user_id = ? AND status IN ?",
				sessionID, userID, models.NonTerminalHandStatuses).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return errAlreadyRaised
		}

		entry = models.HandRaiseModel{
			SessionID: sessionID,
			UserID:    userID,
			Status:    models.HandQueued,
			RaisedAt:  time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		position, err = queuePosition(tx, &entry)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	s.notifier.Emit(sessionID, live.Event{
		Name: live.EventHandRaised,
		Payload: raiseResponse{
			EntryID:  entry.ID,
			UserID:   entry.UserID,
			Position: position,
		},
	})
	return &entry, position, nil
}

// Cancel transitions the caller's own queued or speaking entry to cancelled.
// A speaker who cancels also releases the floor: their active timer ends.
func (s *Service) Cancel(sessionID, userID string) error {
	timerEnded := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := classroom.LockSession(tx, sessionID); err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.HandRaiseModel{}).
			Where("session_id = ? AND user_id = ? AND status IN ?",
				sessionID, userID, models.NonTerminalHandStatuses).
			Updates(map[string]interface{}{"status": models.HandCancelled, "ended_at": &now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoRaisedHand
		}

		timerRes := tx.Model(&models.SpeechTimerModel{}).
			Where("session_id = ? AND user_id = ? AND ended_at IS NULL", sessionID, userID).
			Update("ended_at", &now)
		if timerRes.Error != nil {
			return timerRes.Error
		}
		timerEnded = timerRes.RowsAffected > 0
		return nil
	})
	if err != nil {
		return err
	}

	events := []live.Event{{
		Name:    live.EventHandCancelled,
		Payload: map[string]interface{}{"user_id": userID},
	}}
	if timerEnded {
		events = append(events, live.Event{
			Name:    live.EventTimerStopped,
			Payload: map[string]interface{}{"user_id": userID},
		})
	}
	s.notifier.Emit(sessionID, events...)
	return nil
}

// Position reports the user's current 1-indexed spot among queued entries.
func (s *Service) Position(sessionID, userID string) (int, error) {
	var entry models.HandRaiseModel
	err := s.db.
		Where("session_id = ? AND user_id = ? AND status = ?", sessionID, userID, models.HandQueued).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, errNoRaisedHand
		}
		return 0, err
	}
	return queuePosition(s.db, &entry)
}

// queuePosition is the count of queued entries with a smaller id, plus one.
func queuePosition(db *gorm.DB, entry *models.HandRaiseModel) (int, error) {
	var ahead int64
	err := db.Model(&models.HandRaiseModel{}).
		Where("session_id = ? AND status = ? AND id < ?",
			entry.SessionID, models.HandQueued, entry.ID).
		Count(&ahead).Error
	return int(ahead) + 1, err
}
