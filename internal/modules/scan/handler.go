package scan

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/modules/notify"
	"github.com/rescue-chip/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scan/log", h.log)
}

func (h *Handler) log(c *gin.Context) {
	var dto LogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "chip_folio, scan_type y session_token son requeridos")
		return
	}

	scanType := models.ScanType(dto.ScanType)
	if scanType != models.ScanTypeEmergency && scanType != models.ScanTypeTest {
		response.BadRequest(c, "scan_type debe ser emergency o test")
		return
	}

	err := h.svc.Log(c.Request.Context(), Entry{
		ChipFolio:    dto.ChipFolio,
		ScanType:     scanType,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
		SessionToken: dto.SessionToken,
	})
	if errors.Is(err, notify.ErrRateLimited) {
		response.TooManyRequests(c)
		return
	}

	response.OK(c, gin.H{"ok": true})
}
