package invite

import (
	"errors"

	"github.com/classhall/core/internal/middleware"
	"github.com/classhall/core/internal/pkg/pagination"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, moderatorMW gin.HandlerFunc) {
	g := rg.Group("/invites", authMW, moderatorMW)
	g.POST("", h.create)
	g.GET("", h.list)
}

// POST /invites
func (h *Handler) create(c *gin.Context) {
	var dto CreateInviteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invites, err := h.svc.Create(&dto, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, errUnknownRole) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"data": invites})
}

// GET /invites
func (h *Handler) list(c *gin.Context) {
	invites, pag, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, invites, pag)
}
