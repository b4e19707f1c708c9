package api

import (
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type IssuerHandler struct {
	service insurance.SuretyUseCase
}

type fundRequest struct {
	Value decimal.Decimal `json:"value"`
}

type registerIssuerRequest struct {
	Address string `json:"address" binding:"required"`
}

type issuerResponse struct {
	Address    string `json:"address"`
	Registered bool   `json:"registered"`
	Funded     bool   `json:"funded"`
	Votes      int    `json:"votes"`
}

func toIssuerResponse(i domain.Issuer) issuerResponse {
	return issuerResponse{
		Address:    i.Address.String(),
		Registered: i.Registered,
		Funded:     i.Funded,
		Votes:      i.Votes,
	}
}

func NewIssuerHandler(service insurance.SuretyUseCase) *IssuerHandler {
	return &IssuerHandler{service: service}
}

func (h *IssuerHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.register)
	router.POST("/fund", h.fund)
	router.GET("/count", h.count)
	router.GET("/:address", h.get)
}

// register admits the issuer directly while the registry is small, and otherwise records the
// caller's vote. A pending admission answers 202.
func (h *IssuerHandler) register(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var req registerIssuerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issuer, err := h.service.RegisterIssuer(c.Request.Context(), addr, domain.Address(req.Address))
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusCreated
	if !issuer.Registered {
		status = http.StatusAccepted
	}
	c.JSON(status, toIssuerResponse(issuer))
}

func (h *IssuerHandler) fund(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var req fundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Fund(c.Request.Context(), insurance.FundInput{
		Issuer:     addr,
		Value:      req.Value,
		RequestKey: requestKey(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIssuerResponse(h.service.Issuer(c.Request.Context(), addr)))
}

func (h *IssuerHandler) count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.service.RegisteredIssuerCount(c.Request.Context())})
}

func (h *IssuerHandler) get(c *gin.Context) {
	c.JSON(http.StatusOK, toIssuerResponse(h.service.Issuer(c.Request.Context(), domain.Address(c.Param("address")))))
}
