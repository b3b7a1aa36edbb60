package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/classhall/core/internal/middleware"
	"github.com/classhall/core/internal/modules/classroom/ban"
	"github.com/classhall/core/internal/modules/classroom/handraise"
	"github.com/classhall/core/internal/modules/classroom/poll"
	"github.com/classhall/core/internal/modules/classroom/session"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"github.com/classhall/core/internal/modules/classroom/timer"
	"github.com/classhall/core/internal/modules/invite"
	"github.com/classhall/core/internal/modules/live"
	"github.com/classhall/core/internal/modules/user"
	pkgredis "github.com/classhall/core/internal/pkg/redis"
	"github.com/classhall/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db

	authMW := middleware.Auth(db)
	moderatorMW := middleware.RequireModerator()
	adminMW := middleware.RequireAdmin()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting needs to see the caller's identity when one is offered.
	r.Use(middleware.OptionalAuth(db))
	r.Use(middleware.RateLimit(rc.Raw()))

	api := r.Group(apiPrefix)

	api.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"message": "pong"})
	})
	api.GET("/uptime", func(c *gin.Context) {
		response.OK(c, gin.H{
			"uptime_sec": int(time.Since(processStart).Seconds()),
			"started_at": processStart.UTC().Format(time.RFC3339),
		})
	})

	// Shared services
	snapSvc := snapshot.NewService(db)
	notifier := live.NewNotifier(a.hub, snapSvc, a.logger)

	userSvc := user.NewService(db)
	user.NewHandler(userSvc).RegisterRoutes(api, authMW, adminMW)

	inviteSvc := invite.NewService(db, time.Duration(a.cfg.Live.InviteTTLHours)*time.Hour, a.logger)
	invite.NewHandler(inviteSvc).RegisterRoutes(api, authMW, moderatorMW)

	sessionSvc := session.NewService(db, notifier)
	session.NewHandler(sessionSvc, snapSvc).RegisterRoutes(api, authMW, moderatorMW)

	handraise.NewHandler(handraise.NewService(db, notifier)).RegisterRoutes(api, authMW)
	timer.NewHandler(timer.NewService(db, notifier)).RegisterRoutes(api, authMW, moderatorMW)
	poll.NewHandler(poll.NewService(db, snapSvc, notifier)).RegisterRoutes(api, authMW, moderatorMW)
	ban.NewHandler(ban.NewService(db, notifier)).RegisterRoutes(api, authMW, moderatorMW)

	live.NewHandler(db, a.hub, snapSvc, a.cfg.Live.HeartbeatInterval(), a.logger).RegisterRoutes(api, authMW)

	// Scheduler introspection for operators.
	api.GET("/cron", authMW, adminMW, func(c *gin.Context) {
		response.OK(c, a.sched.List())
	})
}
