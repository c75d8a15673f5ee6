package device

import (
	"errors"
	"net/http"

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, requestLimit, confirmLimit gin.HandlerFunc) {
	g := rg.Group("/device/verify")

	g.POST("/request", requestLimit, authMW, h.request)
	g.GET("/confirm", confirmLimit, h.confirm)
}

func (h *Handler) request(c *gin.Context) {
	var dto RequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "device_id es requerido")
		return
	}

	userID := middleware.CurrentUserID(c)
	deviceInfo := dto.DeviceInfo
	if deviceInfo == "" {
		deviceInfo = c.GetHeader("User-Agent")
	}
	if deviceInfo == "" {
		deviceInfo = "Dispositivo desconocido"
	}

	// Approval mail is best effort, a delivery failure must not leak to
	// the unverified caller.
	if err := h.svc.Request(c.Request.Context(), userID, dto.DeviceID, deviceInfo); err != nil {
		response.InternalErrorMsg(c, "No se pudo registrar el dispositivo")
		return
	}

	response.OK(c, gin.H{"ok": true})
}

func (h *Handler) confirm(c *gin.Context) {
	token := c.Query("token")
	action := c.Query("action")

	if token == "" || (action != ActionAllow && action != ActionRevoke) {
		h.page(c, http.StatusBadRequest, pageBadParams)
		return
	}

	if _, err := h.svc.Confirm(c.Request.Context(), token, action); err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			h.page(c, http.StatusBadRequest, pageExpired)
		case errors.Is(err, ErrInvalidToken):
			h.page(c, http.StatusBadRequest, pageInvalid)
		case errors.Is(err, ErrUnknownAction):
			h.page(c, http.StatusBadRequest, pageBadParams)
		default:
			h.page(c, http.StatusInternalServerError, confirmPage{
				Color: "#ef4444",
				Title: "Error interno",
				Body:  "No pudimos procesar tu solicitud. Intenta de nuevo más tarde.",
			})
		}
		return
	}

	if action == ActionAllow {
		h.page(c, http.StatusOK, pageAllowed)
		return
	}
	h.page(c, http.StatusOK, pageRevoked)
}

func (h *Handler) page(c *gin.Context, status int, p confirmPage) {
	c.Data(status, "text/html; charset=utf-8", renderConfirmPage(p))
}
