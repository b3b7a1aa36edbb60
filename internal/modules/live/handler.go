package live

import (
	"errors"
	"time"

	"github.com/classhall/core/internal/middleware"
	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	hub       *Hub
	snap      *snapshot.Service
	heartbeat time.Duration
	logger    *zap.Logger
}

func NewHandler(db *gorm.DB, hub *Hub, snap *snapshot.Service, heartbeat time.Duration, logger *zap.Logger) *Handler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Handler{db: db, hub: hub, snap: snap, heartbeat: heartbeat, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/sessions/:id/live", authMW, h.stream)
	rg.GET("/live/stats", h.stats)
}

// GET /sessions/:id/live — one-way push stream (SSE).
func (h *Handler) stream(c *gin.Context) {
	sessionID := c.Param("id")
	userID := middleware.CurrentUserID(c)

	var session models.ClassSessionModel
	if err := h.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "session not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	banned, err := classroom.IsBanned(h.db, sessionID, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if banned {
		response.ForbiddenMsg(c, "you are banned from this session")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(sessionID, userID)
	defer h.hub.Unsubscribe(sub)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.SSEvent(EventConnected, gin.H{
		"session_id": sessionID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	})
	if snap, err := h.snap.Build(sessionID); err == nil {
		c.SSEvent(EventSnapshot, snap)
	}
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-sub.C:
			if !ok {
				// Kicked or hub shut down.
				return
			}
			c.SSEvent(ev.Name, ev.Payload)
			c.Writer.Flush()

		case t := <-ticker.C:
			c.SSEvent(EventHeartbeat, gin.H{"timestamp": t.UTC().Format(time.RFC3339Nano)})
			c.Writer.Flush()
		}
	}
}

// GET /live/stats — subscriber counts per session.
func (h *Handler) stats(c *gin.Context) {
	perSession, total := h.hub.Counts()
	response.OK(c, gin.H{
		"sessions": perSession,
		"total":    total,
	})
}
