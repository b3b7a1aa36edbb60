package snapshot

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Build assembles a consistent view of the session's live state. It is a
// pure read: first-connect state and post-mutation resync both go through
// here.
func (s *Service) Build(sessionID string) (*SessionSnapshot, error) {
	var session models.ClassSessionModel
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, classroom.ErrSessionNotFound
		}
		return nil, err
	}

	queue, err := s.buildQueue(sessionID)
	if err != nil {
		return nil, err
	}
	timer, err := s.buildTimer(sessionID)
	if err != nil {
		return nil, err
	}
	poll, err := s.buildPoll(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionSnapshot{
		Session: SessionView{
			ID:        session.ID,
			Title:     session.Title,
			Status:    session.Status,
			CreatorID: session.CreatorID,
			Created:   session.CreatedAt,
			EndedAt:   session.EndedAt,
		},
		Queue:       queue,
		Timer:       timer,
		Poll:        poll,
		Settings:    session.Settings,
		GeneratedAt: time.Now(),
	}, nil
}

func (s *Service) buildQueue(sessionID string) ([]QueueEntry, error) {
	var entries []models.HandRaiseModel
	err := s.db.
		Where("session_id = ? AND status IN ?", sessionID, models.NonTerminalHandStatuses).
		Order("raised_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	queue := make([]QueueEntry, 0, len(entries))
	position := 0
	for _, e := range entries {
		item := QueueEntry{
			ID:         e.ID,
			UserID:     e.UserID,
			Status:     e.Status,
			RaisedAt:   e.RaisedAt,
			SpeakingAt: e.SpeakingAt,
		}
		if e.Status == models.HandQueued {
			position++
			item.Position = position
		}
		queue = append(queue, item)
	}
	return queue, nil
}

func (s *Service) buildTimer(sessionID string) (*TimerView, error) {
	var timer models.SpeechTimerModel
	err := s.db.
		Where("session_id = ? AND ended_at IS NULL", sessionID).
		First(&timer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &TimerView{
		ID:           timer.ID,
		UserID:       timer.UserID,
		DurationSec:  timer.DurationSec,
		StartedAt:    timer.StartedAt,
		RemainingSec: RemainingSeconds(&timer, time.Now()),
	}, nil
}

// buildPoll returns the most recently created poll regardless of status,
// with tallies counted live from the vote rows.
func (s *Service) buildPoll(sessionID string) (*PollView, error) {
	var poll models.PollModel
	err := s.db.
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.BuildPollView(&poll)
}

// BuildPollView assembles a poll with its option tallies.
func (s *Service) BuildPollView(poll *models.PollModel) (*PollView, error) {
	var options []models.PollOptionModel
	if err := s.db.Where("poll_id = ?", poll.ID).Order("ordinal ASC").Find(&options).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		OptionID string
		Count    int64
	}
	var counts []countRow
	err := s.db.Model(&models.PollVoteModel{}).
		Where("poll_id = ?", poll.ID).
		Select("option_id, COUNT(*) as count").
		Group("option_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byOption := make(map[string]int64, len(counts))
	var total int64
	for _, row := range counts {
		byOption[row.OptionID] = row.Count
		total += row.Count
	}

	view := &PollView{
		ID:         poll.ID,
		Question:   poll.Question,
		Type:       poll.Type,
		Anonymous:  poll.Anonymous,
		Status:     poll.Status,
		Options:    make([]OptionTally, 0, len(options)),
		TotalVotes: total,
	}
	for _, opt := range options {
		view.Options = append(view.Options, OptionTally{
			ID:      opt.ID,
			Label:   opt.Label,
			Ordinal: opt.Ordinal,
			Votes:   byOption[opt.ID],
		})
	}
	return view, nil
}

// RemainingSeconds derives the time a speaker has left, clamped at zero.
func RemainingSeconds(timer *models.SpeechTimerModel, now time.Time) int {
	remaining := timer.DurationSec - int(now.Sub(timer.StartedAt).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
