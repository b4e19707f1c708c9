package api

import (
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service insurance.SuretyUseCase
}

type operationalRequest struct {
	Operational *bool `json:"operational" binding:"required"`
}

type operationalResponse struct {
	Operational bool `json:"operational"`
}

func NewAdminHandler(service insurance.SuretyUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/status", h.status)
	router.PUT("/status", h.setStatus)
	router.GET("/escrow", h.escrow)
}

func (h *AdminHandler) status(c *gin.Context) {
	c.JSON(http.StatusOK, operationalResponse{Operational: h.service.IsOperational(c.Request.Context())})
}

func (h *AdminHandler) setStatus(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var req operationalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SetOperationalStatus(c.Request.Context(), addr, *req.Operational); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, operationalResponse{Operational: *req.Operational})
}

func (h *AdminHandler) escrow(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"escrow": h.service.Escrow(c.Request.Context())})
}
