package user

import (
	"errors"

	"github.com/classhall/core/internal/middleware"
	"github.com/classhall/core/internal/pkg/pagination"
	"github.com/classhall/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.GET("/me", authMW, h.me)

	users := rg.Group("/users", authMW, adminMW)
	users.GET("", h.list)
	users.PATCH("/:id/role", h.setRole)
}

// POST /auth/register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.svc.Register(&dto, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, errUsernameTaken):
			response.Conflict(c, err.Error())
		case errors.Is(err, errInvalidInvite):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, user)
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, user, err := h.svc.Login(&dto, c.ClientIP())
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, User: user})
}

// GET /auth/me
func (h *Handler) me(c *gin.Context) {
	user, err := h.svc.Get(middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, user)
}

// GET /users
func (h *Handler) list(c *gin.Context) {
	users, pag, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, users, pag)
}

// PATCH /users/:id/role
func (h *Handler) setRole(c *gin.Context) {
	var dto SetRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.svc.SetRole(c.Param("id"), dto.Role)
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, errUnknownRole):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errLastAdminLocked):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, user)
}
