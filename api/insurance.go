package api

import (
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InsuranceHandler struct {
	service insurance.SuretyUseCase
}

type buyInsuranceRequest struct {
	flightRef
	Value decimal.Decimal `json:"value"`
}

type policyResponse struct {
	FlightKey string          `json:"flight_key"`
	Passenger string          `json:"passenger"`
	Premium   decimal.Decimal `json:"premium"`
}

func NewInsuranceHandler(service insurance.SuretyUseCase) *InsuranceHandler {
	return &InsuranceHandler{service: service}
}

func (h *InsuranceHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.buy)
	router.GET("/:key/:passenger", h.get)
}

func (h *InsuranceHandler) buy(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var req buyInsuranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := h.service.BuyInsurance(c.Request.Context(), insurance.BuyInsuranceInput{
		Passenger:   addr,
		Code:        req.Code,
		Destination: req.Destination,
		Timestamp:   req.Timestamp,
		Value:       req.Value,
		RequestKey:  requestKey(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, policyResponse{
		FlightKey: policy.FlightKey.String(),
		Passenger: policy.Passenger.String(),
		Premium:   policy.Premium,
	})
}

func (h *InsuranceHandler) get(c *gin.Context) {
	key, ok := flightKeyParam(c, "key")
	if !ok {
		return
	}
	passenger := domain.Address(c.Param("passenger"))
	c.JSON(http.StatusOK, policyResponse{
		FlightKey: key.String(),
		Passenger: passenger.String(),
		Premium:   h.service.PassengerPaidAmount(c.Request.Context(), key, passenger),
	})
}
