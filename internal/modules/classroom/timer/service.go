package timer

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
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

// Start gives the floor to a queued participant. One active timer per
// session: a second start while one runs is a conflict. The speaker's
// hand-raise entry moves queued→speaking in the same transaction.
func (s *Service) Start(sessionID, speakerID string, durationSec int) (*models.SpeechTimerModel, error) {
	var timer models.SpeechTimerModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := classroom.LockActiveSession(tx, sessionID); err != nil {
			return err
		}

		var active int64
		err := tx.Model(&models.SpeechTimerModel{}).
			Where("session_id = ? AND ended_at IS NULL", sessionID).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return errTimerActive
		}

		now := time.Now()
		res := tx.Model(&models.HandRaiseModel{}).
			Where("session_id = ? AND user_id = ? AND status = ?",
				sessionID, speakerID, models.HandQueued).
			Updates(map[string]interface{}{"status": models.HandSpeaking, "speaking_at": &now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoActiveHand
		}

		timer = models.SpeechTimerModel{
			SessionID:   sessionID,
			UserID:      speakerID,
			DurationSec: durationSec,
			StartedAt:   now,
		}
		return tx.Create(&timer).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(sessionID,
		live.Event{
			Name:    live.EventHandPicked,
			Payload: map[string]interface{}{"user_id": speakerID},
		},
		live.Event{
			Name: live.EventTimerStarted,
			Payload: map[string]interface{}{
				"timer_id":     timer.ID,
				"user_id":      timer.UserID,
				"duration_sec": timer.DurationSec,
				"started_at":   timer.StartedAt,
			},
		},
	)
	return &timer, nil
}

// Stop ends the active timer and marks the speaker's entry done.
func (s *Service) Stop(sessionID string) (*models.SpeechTimerModel, error) {
	var timer models.SpeechTimerModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := classroom.LockSession(tx, sessionID); err != nil {
			return err
		}

		err := tx.
			Where("session_id = ? AND ended_at IS NULL", sessionID).
			First(&timer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoTimer
		}
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.SpeechTimerModel{}).
			Where("id = ? AND ended_at IS NULL", timer.ID).
			Update("ended_at", &now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoTimer
		}
		timer.EndedAt = &now

		return tx.Model(&models.HandRaiseModel{}).
			Where("session_id = ? AND user_id = ? AND status = ?",
				sessionID, timer.UserID, models.HandSpeaking).
			Updates(map[string]interface{}{"status": models.HandDone, "ended_at": &now}).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(sessionID,
		live.Event{
			Name: live.EventTimerStopped,
			Payload: map[string]interface{}{
				"timer_id": timer.ID,
				"user_id":  timer.UserID,
			},
		},
		live.Event{
			Name:    live.EventHandDismissed,
			Payload: map[string]interface{}{"user_id": timer.UserID},
		},
	)
	return &timer, nil
}

// Active returns the running timer with derived remaining seconds, or nil.
func (s *Service) Active(sessionID string) (*models.SpeechTimerModel, int, error) {
	var timer models.SpeechTimerModel
	err := s.db.
		Where("session_id = ? AND ended_at IS NULL", sessionID).
		First(&timer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return &timer, snapshot.RemainingSeconds(&timer, time.Now()), nil
}
