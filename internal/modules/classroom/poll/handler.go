package poll

import (
	"errors"

	"github.com/classhall/core/internal/middleware"
	"github.com/classhall/core/internal/modules/classroom"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, moderatorMW gin.HandlerFunc) {
	g := rg.Group("/sessions/:id/polls", authMW)
	g.POST("/:pollID/votes", h.cast)

	m := g.Group("", moderatorMW)
	m.POST("", h.create)
	m.POST("/:pollID/close", h.close)
}

// POST /sessions/:id/polls
func (h *Handler) create(c *gin.Context) {
	var dto CreatePollDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	poll, err := h.svc.Create(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		case errors.Is(err, classroom.ErrSessionNotActive):
			response.UnprocessableEntity(c, "session is not active")
		case errors.Is(err, errUnknownPollType), errors.Is(err, errBadOptionCount):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, poll)
}

// POST /sessions/:id/polls/:pollID/votes
func (h *Handler) cast(c *gin.Context) {
	var dto CastVoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.svc.Cast(c.Param("id"), middleware.CurrentUserID(c), c.Param("pollID"), dto.Selected)
	if err != nil {
		switch {
		case errors.Is(err, errPollNotFound):
			response.NotFoundMsg(c, "poll not found")
		case errors.Is(err, classroom.ErrBanned):
			response.ForbiddenMsg(c, "you are banned from this session")
		case errors.Is(err, errPollClosed), errors.Is(err, errWrongSession):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, errSingleChoice), errors.Is(err, errUnknownOption):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errAlreadyVoted):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}

// POST /sessions/:id/polls/:pollID/close
func (h *Handler) close(c *gin.Context) {
	poll, err := h.svc.Close(c.Param("id"), c.Param("pollID"))
	if err != nil {
		switch {
		case errors.Is(err, errPollNotFound):
			response.NotFoundMsg(c, "poll not found")
		case errors.Is(err, errPollClosed), errors.Is(err, errWrongSession):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, poll)
}
