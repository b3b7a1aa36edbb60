package session

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/live"
	"github.com/classhall/core/internal/pkg/pagination"
	"github.com/classhall/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	notifier *live.Notifier
}

func NewService(db *gorm.DB, notifier *live.Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// Create opens a new session in pending status.
func (s *Service) Create(title, creatorID string) (*models.ClassSessionModel, error) {
	session := models.ClassSessionModel{
		Title:     title,
		Status:    models.SessionPending,
		CreatorID: creatorID,
		Settings:  models.DefaultSessionSettings(),
	}
	return &session, s.db.Create(&session).Error
}

// SetStatus transitions pending→active or active→ended; everything else is
// rejected. The transition is a compare-and-set so a concurrent writer loses
// cleanly. endedAt is stamped on entering ended.
func (s *Service) SetStatus(sessionID string, next models.SessionStatus) (*models.ClassSessionModel, error) {
	if !next.Valid() {
		return nil, errInvalidStatus
	}

	var from models.SessionStatus
	switch next {
	case models.SessionActive:
		from = models.SessionPending
	case models.SessionEnded:
		from = models.SessionActive
	default:
		return nil, errInvalidTransition
	}

	updates := map[string]interface{}{"status": next}
	if next == models.SessionEnded {
		now := time.Now()
		updates["ended_at"] = &now
	}

	res := s.db.Model(&models.ClassSessionModel{}).
		Where("id = ? AND status = ?", sessionID, from).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(sessionID); err != nil {
			return nil, err
		}
		return nil, errInvalidTransition
	}

	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(sessionID, live.Event{
		Name:    live.EventSessionUpdated,
		Payload: session,
	})
	return session, nil
}

// UpdateSettings patches the typed settings structure and broadcasts it.
func (s *Service) UpdateSettings(sessionID string, dto *UpdateSettingsDTO) (*models.ClassSessionModel, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	settings := session.Settings
	settings.Version = models.SessionSettingsVersion
	if dto.GlobalMute != nil {
		settings.GlobalMute = *dto.GlobalMute
	}

	if err := s.db.Model(session).Update("settings", settings).Error; err != nil {
		return nil, err
	}
	session.Settings = settings

	s.notifier.Emit(sessionID, live.Event{
		Name:    live.EventSettingsUpdated,
		Payload: settings,
	})
	return session, nil
}

// Get loads one session.
func (s *Service) Get(sessionID string) (*models.ClassSessionModel, error) {
	var session models.ClassSessionModel
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, classroom.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// List returns sessions newest first, optionally filtered by status.
func (s *Service) List(q pagination.Query, status *models.SessionStatus) ([]models.ClassSessionModel, response.Pagination, error) {
	tx := s.db.Model(&models.ClassSessionModel{}).Order("created_at DESC")
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}
	var items []models.ClassSessionModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

// EndStale force-ends sessions that have been active longer than maxAge.
// Run from the maintenance scheduler; each ended session is broadcast like
// any other lifecycle transition.
func (s *Service) EndStale(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var stale []models.ClassSessionModel
	err := s.db.
		Where("status = ? AND updated_at < ?", models.SessionActive, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	ended := 0
	for _, session := range stale {
		if _, err := s.SetStatus(session.ID, models.SessionEnded); err == nil {
			ended++
		}
	}
	return ended, nil
}
