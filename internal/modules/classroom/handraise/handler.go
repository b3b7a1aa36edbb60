package handraise

import (
	"errors"

	"github.com/classhall/core/internal/middleware"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/sessions/:id/hands", authMW)
	g.POST("", h.raise)
	g.DELETE("", h.cancel)
	g.GET("/position", h.position)
}

// POST /sessions/:id/hands
func (h *Handler) raise(c *gin.Context) {
	entry, position, err := h.svc.Raise(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		case errors.Is(err, classroom.ErrSessionNotActive):
			response.UnprocessableEntity(c, "session is not active")
		case errors.Is(err, classroom.ErrBanned):
			response.ForbiddenMsg(c, "you are banned from this session")
		case errors.Is(err, errAlreadyRaised):
			response.Conflict(c, "hand already raised")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, raiseResponse{
		EntryID:  entry.ID,
		UserID:   entry.UserID,
		Position: position,
	})
}

// DELETE /sessions/:id/hands — cancel the caller's own entry.
func (h *Handler) cancel(c *gin.Context) {
	err := h.svc.Cancel(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		case errors.Is(err, errNoRaisedHand):
			response.NotFoundMsg(c, "no raised hand to cancel")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}

// GET /sessions/:id/hands/position
func (h *Handler) position(c *gin.Context) {
	position, err := h.svc.Position(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, errNoRaisedHand) {
			response.NotFoundMsg(c, "no queued hand for this user")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"position": position})
}
