package poll

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"github.com/classhall/core/internal/modules/live"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db       *gorm.DB
	snap     *snapshot.Service
	notifier *live.Notifier
}

func NewService(db *gorm.DB, snap *snapshot.Service, notifier *live.Notifier) *Service {
	return &Service{db: db, snap: snap, notifier: notifier}
}

// Create opens a new poll with ordered options (ordinal = array index).
func (s *Service) Create(sessionID, creatorID string, dto *CreatePollDTO) (*models.PollModel, error) {
	pollType := models.PollSingle
	if dto.Type != "" {
		pollType = models.PollType(dto.Type)
		if !pollType.Valid() {
			return nil, errUnknownPollType
		}
	}
	if len(dto.Options) < minOptions || len(dto.Options) > maxOptions {
		return nil, errBadOptionCount
	}

	var poll models.PollModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := classroom.LockActiveSession(tx, sessionID); err != nil {
			return err
		}

		poll = models.PollModel{
			SessionID: sessionID,
			Question:  dto.Question,
			Type:      pollType,
			Anonymous: dto.Anonymous,
			Status:    models.PollOpen,
			CreatorID: creatorID,
		}
		if err := tx.Create(&poll).Error; err != nil {
			return err
		}

		options := make([]models.PollOptionModel, len(dto.Options))
		for i, label := range dto.Options {
			options[i] = models.PollOptionModel{
				PollID:  poll.ID,
				Label:   label,
				Ordinal: i,
			}
		}
		return tx.Create(&options).Error
	})
	if err != nil {
		return nil, err
	}

	view, viewErr := s.snap.BuildPollView(&poll)
	if viewErr != nil {
		view = nil
	}
	s.notifier.Emit(sessionID, live.Event{Name: live.EventVoteStarted, Payload: view})
	return &poll, nil
}

// Cast records the user's vote. Single-choice polls accept exactly one
// option and reject a second distinct vote; re-casting the same option is
// idempotent. Multiple-choice polls insert each selection independently,
// ignoring duplicates. The poll row lock serializes concurrent casts.
func (s *Service) Cast(sessionID, userID, pollID string, selected []string) error {
	changed := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		poll, err := lockOpenPoll(tx, sessionID, pollID)
		if err != nil {
			return err
		}

		banned, err := classroom.IsBanned(tx, sessionID, userID)
		if err != nil {
			return err
		}
		if banned {
			return classroom.ErrBanned
		}

		valid, err := optionSet(tx, pollID)
		if err != nil {
			return err
		}
		for _, optionID := range selected {
			if _, ok := valid[optionID]; !ok {
				return errUnknownOption
			}
		}

		if poll.Type == models.PollSingle {
			if len(selected) != 1 {
				return errSingleChoice
			}
			var existing models.PollVoteModel
			err := tx.Where("poll_id = ? AND user_id = ?", pollID, userID).First(&existing).Error
			switch {
			case err == nil:
				if existing.OptionID == selected[0] {
					return nil // idempotent re-cast
				}
				return errAlreadyVoted
			case errors.Is(err, gorm.ErrRecordNotFound):
				// first vote
			default:
				return err
			}
		}

		votes := make([]models.PollVoteModel, 0, len(selected))
		for _, optionID := range dedupe(selected) {
			votes = append(votes, models.PollVoteModel{
				PollID:   pollID,
				OptionID: optionID,
				UserID:   userID,
			})
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&votes)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.emitTally(sessionID, pollID, live.EventVoteUpdated)
	}
	return nil
}

// Close freezes the poll; further casts are rejected.
func (s *Service) Close(sessionID, pollID string) (*models.PollModel, error) {
	var poll models.PollModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		loaded, err := lockOpenPoll(tx, sessionID, pollID)
		if err != nil {
			return err
		}
		poll = *loaded

		res := tx.Model(&models.PollModel{}).
			Where("id = ? AND status = ?", pollID, models.PollOpen).
			Update("status", models.PollClosed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPollClosed
		}
		poll.Status = models.PollClosed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitTally(sessionID, pollID, live.EventVoteResult)
	return &poll, nil
}

func (s *Service) emitTally(sessionID, pollID, event string) {
	var poll models.PollModel
	if err := s.db.First(&poll, "id = ?", pollID).Error; err != nil {
		return
	}
	view, err := s.snap.BuildPollView(&poll)
	if err != nil {
		return
	}
	s.notifier.Emit(sessionID, live.Event{Name: event, Payload: view})
}

// lockOpenPoll takes the poll's row lock (serializing casts and closes for
// this poll), verifying it belongs to the session and is still open.
func lockOpenPoll(tx *gorm.DB, sessionID, pollID string) (*models.PollModel, error) {
	res := tx.Model(&models.PollModel{}).
		Where("id = ? AND session_id = ? AND status = ?", pollID, sessionID, models.PollOpen).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return nil, res.Error
	}

	var poll models.PollModel
	err := tx.First(&poll, "id = ?", pollID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errPollNotFound
	}
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 {
		if poll.SessionID != sessionID {
			return nil, errWrongSession
		}
		return nil, errPollClosed
	}
	return &poll, nil
}

func optionSet(tx *gorm.DB, pollID string) (map[string]struct{}, error) {
	var options []models.PollOptionModel
	if err := tx.Where("poll_id = ?", pollID).Find(&options).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(options))
	for _, opt := range options {
		set[opt.ID] = struct{}{}
	}
	return set, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
