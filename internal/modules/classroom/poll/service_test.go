package poll

import (
	"testing"

	"github.com/classhall/core/internal/database"
	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"github.com/classhall/core/internal/modules/live"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *snapshot.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	snap := snapshot.NewService(db)
	hub := live.NewHub(nil, zap.NewNop())
	notifier := live.NewNotifier(hub, snap, zap.NewNop())
	return NewService(db, snap, notifier), snap, db
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

func pollOptions(t *testing.T, db *gorm.DB, pollID string) []models.PollOptionModel {
	t.Helper()
	var options []models.PollOptionModel
	require.NoError(t, db.Where("poll_id = ?", pollID).Order("ordinal ASC").Find(&options).Error)
	return options
}

func TestCreateAssignsOrdinals(t *testing.T) {
	svc, _, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "是否听懂了？",
		Options:  []string{"是", "否"},
	})
	require.NoError(t, err)
	require.Equal(t, models.PollSingle, poll.Type)
	require.Equal(t, models.PollOpen, poll.Status)

	options := pollOptions(t, db, poll.ID)
	require.Len(t, options, 2)
	require.Equal(t, "是", options[0].Label)
	require.Equal(t, 0, options[0].Ordinal)
	require.Equal(t, "否", options[1].Label)
	require.Equal(t, 1, options[1].Ordinal)
}

func TestCreateValidation(t *testing.T) {
	svc, _, db := newTestService(t)
	session := seedActiveSession(t, db)

	_, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"only one"},
	})
	require.ErrorIs(t, err, errBadOptionCount)

	_, err = svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b"}, Type: "ranked",
	})
	require.ErrorIs(t, err, errUnknownPollType)
}

func TestCreateRequiresActiveSession(t *testing.T) {
	svc, _, db := newTestService(t)
	session := &models.ClassSessionModel{
		Title: "ended", Status: models.SessionEnded,
		CreatorID: "teacher-1", Settings: models.DefaultSessionSettings(),
	}
	require.NoError(t, db.Create(session).Error)

	_, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b"},
	})
	require.ErrorIs(t, err, classroom.ErrSessionNotActive)
}

func TestSingleChoiceCastAndRecast(t *testing.T) {
	svc, snap, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "是否听懂了？", Options: []string{"是", "否"},
	})
	require.NoError(t, err)
	options := pollOptions(t, db, poll.ID)
	yes, no := options[0].ID, options[1].ID

	require.NoError(t, svc.Cast(session.ID, "student-1", poll.ID, []string{yes}))

	// Re-casting the same option is idempotent.
	require.NoError(t, svc.Cast(session.ID, "student-1", poll.ID, []string{yes}))

	// A different option is rejected, not silently switched.
	err = svc.Cast(session.ID, "student-1", poll.ID, []string{no})
	require.ErrorIs(t, err, errAlreadyVoted)

	view, err := snap.BuildPollView(poll)
	require.NoError(t, err)
	require.EqualValues(t, 1, view.TotalVotes)
	require.EqualValues(t, 1, view.Options[0].Votes)
	require.EqualValues(t, 0, view.Options[1].Votes)
}

func TestSingleChoiceRejectsMultipleSelections(t *testing.T) {
	svc, _, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)
	options := pollOptions(t, db, poll.ID)

	err = svc.Cast(session.ID, "student-1", poll.ID, []string{options[0].ID, options[1].ID})
	require.ErrorIs(t, err, errSingleChoice)
}

func TestSingleChoiceTallyMatchesVoterCount(t *testing.T) {
	svc, snap, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b", "c"},
	})
	require.NoError(t, err)
	options := pollOptions(t, db, poll.ID)

	voters := []struct{ user, option string }{
		{"student-1", options[0].ID},
		{"student-2", options[0].ID},
		{"student-3", options[1].ID},
		{"student-4", options[2].ID},
	}
	for _, v := range voters {
		require.NoError(t, svc.Cast(session.ID, v.user, poll.ID, []string{v.option}))
	}

	view, err := snap.BuildPollView(poll)
	require.NoError(t, err)
	require.EqualValues(t, len(voters), view.TotalVotes)

	var sum int64
	for _, opt := range view.Options {
		sum += opt.Votes
	}
	require.EqualValues(t, len(voters), sum)
}

func TestMultipleChoiceDeduplicatesSelections(t *testing.T) {
	svc, snap, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b", "c"}, Type: "multiple",
	})
	require.NoError(t, err)
	options := pollOptions(t, db, poll.ID)

	// Duplicate in one request plus a repeat cast of an already held option.
	require.NoError(t, svc.Cast(session.ID, "student-1", poll.ID,
		[]string{options[0].ID, options[0].ID, options[1].ID}))
	require.NoError(t, svc.Cast(session.ID, "student-1", poll.ID,
		[]string{options[1].ID, options[2].ID}))

	view, err := snap.BuildPollView(poll)
	require.NoError(t, err)
	require.EqualValues(t, 3, view.TotalVotes)
	for _, opt := range view.Options {
		require.EqualValues(t, 1, opt.Votes)
	}
}

func TestCastValidatesOptionOwnership(t *testing.T) {
	svc, _, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)

	other, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "other", Options: []string{"x", "y"},
	})
	require.NoError(t, err)
	foreign := pollOptions(t, db, other.ID)[0].ID

	err = svc.Cast(session.ID, "student-1", poll.ID, []string{foreign})
	require.ErrorIs(t, err, errUnknownOption)
}

func TestCastRejectsBannedUser(t *testing.T) {
	svc, _, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)
	options := pollOptions(t, db, poll.ID)

	require.NoError(t, db.Create(&models.SessionBanModel{
		SessionID: session.ID, UserID: "student-1", BannedBy: "teacher-1",
	}).Error)

	err = svc.Cast(session.ID, "student-1", poll.ID, []string{options[0].ID})
	require.ErrorIs(t, err, classroom.ErrBanned)
}

func TestCloseFreezesPoll(t *testing.T) {
	svc, _, db := newTestService(t)
	session := seedActiveSession(t, db)

	poll, err := svc.Create(session.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)
	options := pollOptions(t, db, poll.ID)

	closed, err := svc.Close(session.ID, poll.ID)
	require.NoError(t, err)
	require.Equal(t, models.PollClosed, closed.Status)

	err = svc.Cast(session.ID, "student-1", poll.ID, []string{options[0].ID})
	require.ErrorIs(t, err, errPollClosed)

	_, err = svc.Close(session.ID, poll.ID)
	require.ErrorIs(t, err, errPollClosed)
}

func TestCastChecksPollSession(t *testing.T) {
	svc, _, db := newTestService(t)
	sessionA := seedActiveSession(t, db)
	sessionB := seedActiveSession(t, db)

	poll, err := svc.Create(sessionA.ID, "teacher-1", &CreatePollDTO{
		Question: "q", Options: []string{"a", "b"},
	})
	require.NoError(t, err)
	options := pollOptions(t, db, poll.ID)

	err = svc.Cast(sessionB.ID, "student-1", poll.ID, []string{options[0].ID})
	require.ErrorIs(t, err, errWrongSession)

	err = svc.Cast(sessionA.ID, "student-1", "no-such-poll", []string{options[0].ID})
	require.ErrorIs(t, err, errPollNotFound)
}
