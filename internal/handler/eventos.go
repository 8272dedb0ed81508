package handler

import (
	"net/http"

	"comandas/internal/dto"
	"comandas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventosHandler struct{ svc service.EventoService }

func NewEventosHandler(svc service.EventoService) *EventosHandler {
	return &EventosHandler{svc: svc}
}

func (h *EventosHandler) Crear(c *gin.Context) {
	var req dto.CrearEventoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EventoEnvelope{Success: true, Evento: *resp})
}

func (h *EventosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EventosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EventoEnvelope{Success: true, Evento: *resp})
}

func (h *EventosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarEventoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EventoEnvelope{Success: true, Evento: *resp})
}

func (h *EventosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ObtenerActivo returns {success, evento} with evento null when none is set.
func (h *EventosHandler) ObtenerActivo(c *gin.Context) {
	resp, err := h.svc.ObtenerActivo(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EventosHandler) FijarActivo(c *gin.Context) {
	var req dto.FijarEventoActivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.FijarActivo(c.Request.Context(), uuid.MustParse(req.EventoID))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
