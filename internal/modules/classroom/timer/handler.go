package timer

import (
	"errors"

	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, moderatorMW gin.HandlerFunc) {
	g := rg.Group("/sessions/:id/timer", authMW)
	g.GET("", h.active)

	m := g.Group("", moderatorMW)
	m.POST("", h.start)
	m.DELETE("", h.stop)
}

// POST /sessions/:id/timer
func (h *Handler) start(c *gin.Context) {
	var dto StartTimerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	timer, err := h.svc.Start(c.Param("id"), dto.SpeakerID, dto.DurationSec)
	if err != nil {
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		case errors.Is(err, classroom.ErrSessionNotActive):
			response.UnprocessableEntity(c, "session is not active")
		case errors.Is(err, errTimerActive):
			response.Conflict(c, err.Error())
		case errors.Is(err, errNoActiveHand):
			response.NotFoundMsg(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, timer)
}

// DELETE /sessions/:id/timer
func (h *Handler) stop(c *gin.Context) {
	timer, err := h.svc.Stop(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		case errors.Is(err, errNoTimer):
			response.NotFoundMsg(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, timer)
}

// GET /sessions/:id/timer
func (h *Handler) active(c *gin.Context) {
	timer, remaining, err := h.svc.Active(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if timer == nil {
		response.OK(c, gin.H{"active": false})
		return
	}
	response.OK(c, gin.H{
		"active":        true,
		"timer":         timer,
		"remaining_sec": remaining,
	})
}
