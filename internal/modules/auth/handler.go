package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rescue-chip/core/internal/middleware"
	"github.com/rescue-chip/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, loginLimit gin.HandlerFunc) {
	g := rg.Group("/auth")

	g.POST("/login", loginLimit, h.login)
	g.POST("/sign-out", authMW, h.signOut)
	g.GET("/session", authMW, h.session)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "username y password son requeridos")
		return
	}

	token, u, err := h.svc.Login(dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, errUserNotFound) || errors.Is(err, errWrongPassword) {
			response.Forbidden(c, "Usuario o contraseña incorrectos.")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, User: toResponse(u)})
}

func (h *Handler) signOut(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	sessionID := middleware.CurrentSessionID(c)
	if err := h.svc.SignOut(userID, sessionID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"ok": true})
}

func (h *Handler) session(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, gin.H{
		"session_id": middleware.CurrentSessionID(c),
		"user":       toResponse(u),
	})
}
