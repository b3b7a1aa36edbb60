package user

import (
	"testing"
	"time"

	"github.com/classhall/core/internal/database"
	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/pkg/jwt"
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

func seedInvite(t *testing.T, db *gorm.DB, code string, role models.UserRole, expiresAt *time.Time) *models.InviteModel {
	t.Helper()
	invite := &models.InviteModel{
		Code:      code,
		Role:      role,
		CreatedBy: "admin-1",
		ExpiresAt: expiresAt,
	}
	require.NoError(t, db.Create(invite).Error)
	return invite
}

func TestRegisterConsumesInvite(t *testing.T) {
	svc, db := newTestService(t)
	seedInvite(t, db, "welcome", models.RoleTeacher, nil)

	user, err := svc.Register(&RegisterDTO{
		Username: "alice", Password: "password123", InviteCode: "welcome",
	}, "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, user.Role)
	require.NotEqual(t, "password123", user.Password, "password must be stored hashed")

	var invite models.InviteModel
	require.NoError(t, db.Where("code = ?", "welcome").First(&invite).Error)
	require.Equal(t, user.ID, invite.UsedBy)
	require.NotNil(t, invite.UsedAt)

	// A consumed code does not work twice.
	_, err = svc.Register(&RegisterDTO{
		Username: "bob", Password: "password123", InviteCode: "welcome",
	}, "127.0.0.1")
	require.ErrorIs(t, err, errInvalidInvite)
}

func TestRegisterRejectsExpiredInvite(t *testing.T) {
	svc, db := newTestService(t)
	past := time.Now().Add(-time.Hour)
	seedInvite(t, db, "stale", models.RoleStudent, &past)

	_, err := svc.Register(&RegisterDTO{
		Username: "alice", Password: "password123", InviteCode: "stale",
	}, "")
	require.ErrorIs(t, err, errInvalidInvite)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	svc, db := newTestService(t)
	seedInvite(t, db, "one", models.RoleStudent, nil)
	seedInvite(t, db, "two", models.RoleStudent, nil)

	_, err := svc.Register(&RegisterDTO{
		Username: "alice", Password: "password123", InviteCode: "one",
	}, "")
	require.NoError(t, err)

	_, err = svc.Register(&RegisterDTO{
		Username: "alice", Password: "different456", InviteCode: "two",
	}, "")
	require.ErrorIs(t, err, errUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, db := newTestService(t)
	seedInvite(t, db, "code", models.RoleStudent, nil)

	created, err := svc.Register(&RegisterDTO{
		Username: "alice", Password: "password123", InviteCode: "code",
	}, "")
	require.NoError(t, err)

	token, user, err := svc.Login(&LoginDTO{Username: "alice", Password: "password123"}, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	claims, err := jwt.Parse(token)
	require.NoError(t, err)
	require.Equal(t, created.ID, claims.UserID)
	require.Equal(t, string(models.RoleStudent), claims.Role)

	// Login stamps last-seen metadata.
	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginTime)
	require.Equal(t, "10.0.0.1", got.LastLoginIP)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, db := newTestService(t)
	seedInvite(t, db, "code", models.RoleStudent, nil)
	_, err := svc.Register(&RegisterDTO{
		Username: "alice", Password: "password123", InviteCode: "code",
	}, "")
	require.NoError(t, err)

	_, _, err = svc.Login(&LoginDTO{Username: "alice", Password: "wrong"}, "")
	require.ErrorIs(t, err, errBadCredentials)

	_, _, err = svc.Login(&LoginDTO{Username: "nobody", Password: "password123"}, "")
	require.ErrorIs(t, err, errBadCredentials)
}

func TestSetRoleKeepsLastAdmin(t *testing.T) {
	svc, db := newTestService(t)

	admin := &models.UserModel{Username: "root", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	_, err := svc.SetRole(admin.ID, models.RoleTeacher)
	require.ErrorIs(t, err, errLastAdminLocked)

	second := &models.UserModel{Username: "root2", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(second).Error)

	updated, err := svc.SetRole(admin.ID, models.RoleTeacher)
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, updated.Role)
}

func TestSetRoleValidation(t *testing.T) {
	svc, db := newTestService(t)
	student := &models.UserModel{Username: "bob", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(student).Error)

	_, err := svc.SetRole(student.ID, models.UserRole("superuser"))
	require.ErrorIs(t, err, errUnknownRole)

	_, err = svc.SetRole("no-such-id", models.RoleTeacher)
	require.ErrorIs(t, err, errUserNotFound)
}
