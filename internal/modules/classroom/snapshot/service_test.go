package snapshot

import (
	"testing"
	"time"

	"github.com/classhall/core/internal/database"
	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db), db
}

func seedActiveSession(t *testing.T, db *gorm.DB) *models.ClassSessionModel {
	t.Helper()
	session := &models.ClassSessionModel{
		Title:     "test session",
		Status:    models.SessionActive,
		CreatorID: "teacher-1",
		Settings:  models.DefaultSessionSettings(),
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func TestBuildUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Build("no-such-id")
	require.ErrorIs(t, err, classroom.ErrSessionNotFound)
}

func TestBuildEmptySession(t *testing.T) {
	svc, db := newTestService(t)
	session := seedActiveSession(t, db)

	snap, err := svc.Build(session.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, snap.Session.ID)
	require.Equal(t, models.SessionActive, snap.Session.Status)
	require.Empty(t, snap.Queue)
	require.Nil(t, snap.Timer)
	require.Nil(t, snap.Poll)
	require.Equal(t, models.SessionSettingsVersion, snap.Settings.Version)
	require.WithinDuration(t, time.Now(), snap.GeneratedAt, 5*time.Second)
}

func TestBuildQueueOrderAndPositions(t *testing.T) {
	svc, db := newTestService(t)
	session := seedActiveSession(t, db)

	base := time.Now().Add(-time.Minute)
	now := time.Now()
	entries := []models.HandRaiseModel{
		{SessionID: session.ID, UserID: "speaker", Status: models.HandSpeaking, RaisedAt: base, SpeakingAt: &now},
		{SessionID: session.ID, UserID: "first", Status: models.HandQueued, RaisedAt: base.Add(time.Second)},
		{SessionID: session.ID, UserID: "second", Status: models.HandQueued, RaisedAt: base.Add(2 * time.Second)},
		{SessionID: session.ID, UserID: "gone", Status: models.HandCancelled, RaisedAt: base.Add(3 * time.Second)},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	snap, err := svc.Build(session.ID)
	require.NoError(t, err)

	// Terminal entries are invisible; the speaker leads without a position.
	require.Len(t, snap.Queue, 3)
	require.Equal(t, "speaker", snap.Queue[0].UserID)
	require.Equal(t, 0, snap.Queue[0].Position)
	require.Equal(t, "first", snap.Queue[1].UserID)
	require.Equal(t, 1, snap.Queue[1].Position)
	require.Equal(t, "second", snap.Queue[2].UserID)
	require.Equal(t, 2, snap.Queue[2].Position)
}

func TestBuildTimerDerivesRemaining(t *testing.T) {
	svc, db := newTestService(t)
	session := seedActiveSession(t, db)

	require.NoError(t, db.Create(&models.SpeechTimerModel{
		SessionID:   session.ID,
		UserID:      "speaker",
		DurationSec: 60,
		StartedAt:   time.Now().Add(-20 * time.Second),
	}).Error)

	snap, err := svc.Build(session.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.Timer)
	require.InDelta(t, 40, snap.Timer.RemainingSec, 2)
}

func TestBuildSurfacesNewestPoll(t *testing.T) {
	svc, db := newTestService(t)
	session := seedActiveSession(t, db)

	older := models.PollModel{
		SessionID: session.ID, Question: "older", Status: models.PollClosed, CreatorID: "teacher-1",
	}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Model(&older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	newer := models.PollModel{
		SessionID: session.ID, Question: "newer", Status: models.PollOpen, CreatorID: "teacher-1",
	}
	require.NoError(t, db.Create(&newer).Error)

	snap, err := svc.Build(session.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.Poll)
	require.Equal(t, "newer", snap.Poll.Question)
}

func TestBuildPollViewTallies(t *testing.T) {
	svc, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll := models.PollModel{
		SessionID: session.ID, Question: "q", Status: models.PollOpen, CreatorID: "teacher-1",
	}
	require.NoError(t, db.Create(&poll).Error)

	a := models.PollOptionModel{PollID: poll.ID, Label: "a", Ordinal: 0}
	b := models.PollOptionModel{PollID: poll.ID, Label: "b", Ordinal: 1}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	votes := []models.PollVoteModel{
		{PollID: poll.ID, OptionID: a.ID, UserID: "u1"},
		{PollID: poll.ID, OptionID: a.ID, UserID: "u2"},
		{PollID: poll.ID, OptionID: b.ID, UserID: "u3"},
	}
	require.NoError(t, db.Create(&votes).Error)

	view, err := svc.BuildPollView(&poll)
	require.NoError(t, err)
	require.EqualValues(t, 3, view.TotalVotes)
	require.EqualValues(t, 2, view.Options[0].Votes)
	require.EqualValues(t, 1, view.Options[1].Votes)
}

func TestRemainingSecondsClamped(t *testing.T) {
	timer := &models.SpeechTimerModel{DurationSec: 30, StartedAt: time.Now().Add(-time.Hour)}
	require.Equal(t, 0, RemainingSeconds(timer, time.Now()))

	timer = &models.SpeechTimerModel{DurationSec: 30, StartedAt: time.Now()}
	require.Equal(t, 20, RemainingSeconds(timer, timer.StartedAt.Add(10*time.Second)))
}
