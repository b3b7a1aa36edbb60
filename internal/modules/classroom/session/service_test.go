package session

import (
	"testing"
	"time"

	"github.com/classhall/core/internal/database"
	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"github.com/classhall/core/internal/modules/live"
	"github.com/classhall/core/internal/pkg/pagination"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

	hub := live.NewHub(nil, zap.NewNop())
	notifier := live.NewNotifier(hub, snapshot.NewService(db), zap.NewNop())
	return NewService(db, notifier), db
}

func TestCreateStartsPending(t *testing.T) {
	svc, _ := newTestService(t)

	session, err := svc.Create("Algebra II", "teacher-1")
	require.NoError(t, err)
	require.Equal(t, models.SessionPending, session.Status)
	require.Equal(t, models.SessionSettingsVersion, session.Settings.Version)
	require.False(t, session.Settings.GlobalMute)
	require.Nil(t, session.EndedAt)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.SessionStatus
		to      models.SessionStatus
		wantErr error
	}{
		{"pending to active", models.SessionPending, models.SessionActive, nil},
		{"active to ended", models.SessionActive, models.SessionEnded, nil},
		{"pending to ended", models.SessionPending, models.SessionEnded, errInvalidTransition},
		{"ended to active", models.SessionEnded, models.SessionActive, errInvalidTransition},
		{"active to pending", models.SessionActive, models.SessionPending, errInvalidTransition},
		{"ended to pending", models.SessionEnded, models.SessionPending, errInvalidTransition},
		{"unknown status", models.SessionPending, models.SessionStatus("paused"), errInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, db := newTestService(t)
			session, err := svc.Create("test", "teacher-1")
			require.NoError(t, err)
			require.NoError(t, db.Model(session).Update("status", tc.from).Error)

			updated, err := svc.SetStatus(session.ID, tc.to)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.to, updated.Status)
		})
	}
}

func TestEndStampsEndedAt(t *testing.T) {
	svc, db := newTestService(t)
	session, err := svc.Create("test", "teacher-1")
	require.NoError(t, err)
	require.NoError(t, db.Model(session).Update("status", models.SessionActive).Error)

	updated, err := svc.SetStatus(session.ID, models.SessionEnded)
	require.NoError(t, err)
	require.NotNil(t, updated.EndedAt)
	require.WithinDuration(t, time.Now(), *updated.EndedAt, 5*time.Second)
}

func TestSetStatusUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SetStatus("no-such-id", models.SessionActive)
	require.ErrorIs(t, err, classroom.ErrSessionNotFound)
}

func TestUpdateSettingsPatchesAndVersions(t *testing.T) {
	svc, _ := newTestService(t)
	session, err := svc.Create("test", "teacher-1")
	require.NoError(t, err)

	mute := true
	updated, err := svc.UpdateSettings(session.ID, &UpdateSettingsDTO{GlobalMute: &mute})
	require.NoError(t, err)
	require.True(t, updated.Settings.GlobalMute)
	require.Equal(t, models.SessionSettingsVersion, updated.Settings.Version)

	// A patch with no fields keeps current values.
	updated, err = svc.UpdateSettings(session.ID, &UpdateSettingsDTO{})
	require.NoError(t, err)
	require.True(t, updated.Settings.GlobalMute)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, db := newTestService(t)

	a, err := svc.Create("a", "teacher-1")
	require.NoError(t, err)
	_, err = svc.Create("b", "teacher-1")
	require.NoError(t, err)
	require.NoError(t, db.Model(a).Update("status", models.SessionActive).Error)

	active := models.SessionActive
	items, pag, err := svc.List(pagination.Query{Page: 1, Size: 10}, &active)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, a.ID, items[0].ID)
	require.EqualValues(t, 1, pag.Total)

	items, pag, err = svc.List(pagination.Query{Page: 1, Size: 10}, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.EqualValues(t, 2, pag.Total)
}

func TestEndStaleForceEndsOldActiveSessions(t *testing.T) {
	svc, db := newTestService(t)

	stale, err := svc.Create("stale", "teacher-1")
	require.NoError(t, err)
	fresh, err := svc.Create("fresh", "teacher-1")
	require.NoError(t, err)

	old := time.Now().Add(-13 * time.Hour)
	require.NoError(t, db.Model(stale).Updates(map[string]interface{}{
		"status": models.SessionActive, "updated_at": old,
	}).Error)
	require.NoError(t, db.Model(fresh).Update("status", models.SessionActive).Error)

	ended, err := svc.EndStale(12 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, ended)

	got, err := svc.Get(stale.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionEnded, got.Status)

	got, err = svc.Get(fresh.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionActive, got.Status)
}
