package auth

import (
	"errors"

	"github.com/codelens/core/internal/middleware"
	"github.com/codelens/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/me", authMW, h.me)
}

// POST /auth/register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		if errors.Is(err, errEmailTaken) || errors.Is(err, errUsernameTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, "registration failed")
		return
	}
	response.Created(c, gin.H{
		"user": userResponse{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(dto.Email, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, errInvalidLogin) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "login failed")
		return
	}
	response.OK(c, gin.H{
		"token": token,
		"user":  userResponse{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}

// GET /auth/me
func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, "failed to load user")
		return
	}
	if u == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, gin.H{
		"user": userResponse{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}
