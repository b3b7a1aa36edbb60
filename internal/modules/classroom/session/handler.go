package session

import (
	"errors"

	"github.com/classhall/core/internal/middleware"
	"github.com/classhall/core/internal/models"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"github.com/classhall/core/internal/pkg/pagination"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc  *Service
	snap *snapshot.Service
}

func NewHandler(svc *Service, snap *snapshot.Service) *Handler {
	return &Handler{svc: svc, snap: snap}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, moderatorMW gin.HandlerFunc) {
	g := rg.Group("/sessions", authMW)

	g.GET("", h.list)
	g.GET("/:id", h.get)

	m := g.Group("", moderatorMW)
	m.POST("", h.create)
	m.PATCH("/:id/status", h.setStatus)
	m.PATCH("/:id/settings", h.updateSettings)
}

// POST /sessions
func (h *Handler) create(c *gin.Context) {
	var dto CreateSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	session, err := h.svc.Create(dto.Title, middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, session)
}

// GET /sessions?status=active
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	var statusFilter *models.SessionStatus
	if raw := c.Query("status"); raw != "" {
		status := models.SessionStatus(raw)
		if !status.Valid() {
			response.BadRequest(c, "unknown session status")
			return
		}
		statusFilter = &status
	}

	items, pag, err := h.svc.List(q, statusFilter)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /sessions/:id — full snapshot, same structure the stream pushes.
func (h *Handler) get(c *gin.Context) {
	snap, err := h.snap.Build(c.Param("id"))
	if err != nil {
		if errors.Is(err, classroom.ErrSessionNotFound) {
			response.NotFoundMsg(c, "session not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, snap)
}

// PATCH /sessions/:id/status
func (h *Handler) setStatus(c *gin.Context) {
	var dto SetStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.svc.SetStatus(c.Param("id"), models.SessionStatus(dto.Status))
	if err != nil {
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		case errors.Is(err, errInvalidStatus):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errInvalidTransition):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, session)
}

// PATCH /sessions/:id/settings
func (h *Handler) updateSettings(c *gin.Context) {
	var dto UpdateSettingsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.svc.UpdateSettings(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, classroom.ErrSessionNotFound) {
			response.NotFoundMsg(c, "session not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, session)
}
