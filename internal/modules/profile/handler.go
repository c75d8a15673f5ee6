package profile

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rescue-chip/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile/:folio", h.get)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("folio"))
	if err != nil {
		switch {
		case errors.Is(err, ErrChipNotFound), errors.Is(err, ErrChipInactive),
			errors.Is(err, ErrProfileNotFound):
			response.NotFoundMsg(c, "Perfil no disponible")
		default:
			response.InternalErrorMsg(c, "No se pudo cargar el perfil")
		}
		return
	}
	response.OK(c, p)
}
