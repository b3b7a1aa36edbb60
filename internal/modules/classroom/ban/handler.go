package ban

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
	g := rg.Group("/sessions/:id/bans", authMW, moderatorMW)
	g.POST("", h.ban)
	g.GET("", h.list)
}

// POST /sessions/:id/bans
func (h *Handler) ban(c *gin.Context) {
	var dto BanUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ban, err := h.svc.Ban(c.Param("id"), dto.UserID, dto.Reason, middleware.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		case errors.Is(err, errUserNotFound):
			response.NotFoundMsg(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, ban)
}

// GET /sessions/:id/bans
func (h *Handler) list(c *gin.Context) {
	bans, err := h.svc.List(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, bans)
}
