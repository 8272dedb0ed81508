package handler

import (
	"fmt"
	"net/http"

	"comandas/internal/dto"
	"comandas/internal/service"

	"github.com/gin-gonic/gin"
)

type ComandasHandler struct{ svc service.ComandaService }

func NewComandasHandler(svc service.ComandaService) *ComandasHandler {
	return &ComandasHandler{svc: svc}
}

// Crear registers a comanda and its items in one transaction.
// POST /api/comandas/create
func (h *ComandasHandler) Crear(c *gin.Context) {
	var req dto.CrearComandaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarEstado moves a pendiente comanda to pagado or cancelado.
// POST /api/comandas/update-status
func (h *ComandasHandler) ActualizarEstado(c *gin.Context) {
	var req dto.ActualizarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEstado(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar returns open (pendiente or pagado) comandas, newest first.
// GET /api/comandas/list
func (h *ComandasHandler) Listar(c *gin.Context) {
	var filter dto.ComandaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarAbiertas(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComandasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket streams the printable PDF for a comanda.
// GET /api/comandas/:id/ticket
func (h *ComandasHandler) Ticket(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	pdf, err := h.svc.GenerarTicket(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="comanda-%s.pdf"`, id.String()[:8]))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
