package app

import (
	"context"
	"fmt"
	"time"

	"github.com/classhall/core/internal/modules/classroom/session"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"github.com/classhall/core/internal/modules/invite"
	"github.com/classhall/core/internal/modules/live"
	pkgcron "github.com/classhall/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs() {
	cronLogger := a.logger.Named("CronService")

	notifier := live.NewNotifier(a.hub, snapshot.NewService(a.db), a.logger)
	sessionSvc := session.NewService(a.db, notifier)
	inviteSvc := invite.NewService(a.db, time.Duration(a.cfg.Live.InviteTTLHours)*time.Hour, a.logger)

	maxAge := time.Duration(a.cfg.Live.MaxSessionHours) * time.Hour

	a.sched.Register(pkgcron.Job{
		Name:        "end_stale_sessions",
		Description: "Force-end sessions active beyond the configured maximum",
		Interval:    10 * time.Minute,
		Fn: func(ctx context.Context) error {
			ended, err := sessionSvc.EndStale(maxAge)
			if err != nil {
				cronLogger.Warn("ending stale sessions failed", zap.Error(err))
				return err
			}
			if ended > 0 {
				cronLogger.Info(fmt.Sprintf("ended %d stale sessions", ended))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "prune_expired_invites",
		Description: "Delete unused invite codes past their expiry",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			if err := inviteSvc.PruneExpired(); err != nil {
				cronLogger.Warn("pruning expired invites failed", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
