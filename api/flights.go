package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/flights"
	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/Domenick1991/flightsurety/internal/surety"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type FlightHandler struct {
	flights flights.FlightUseCase
	surety  insurance.SuretyUseCase
}

type registerFlightRequest struct {
	Code        string          `json:"code" binding:"required"`
	Departure   string          `json:"departure"`
	Destination string          `json:"destination" binding:"required"`
	Timestamp   int64           `json:"timestamp" binding:"required"`
	Price       decimal.Decimal `json:"price"`
}

type flightResponse struct {
	Key         string          `json:"key"`
	Code        string          `json:"code"`
	Departure   string          `json:"departure"`
	Destination string          `json:"destination"`
	Timestamp   int64           `json:"timestamp"`
	Price       decimal.Decimal `json:"price"`
	Issuer      string          `json:"issuer"`
	Status      string          `json:"status"`
	StatusCode  uint8           `json:"status_code"`
	UpdatedAt   string          `json:"updated_at"`
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		Key:         f.Key.String(),
		Code:        f.Code,
		Departure:   f.Departure,
		Destination: f.Destination,
		Timestamp:   f.Timestamp,
		Price:       f.Price,
		Issuer:      f.Issuer.String(),
		Status:      f.Status.String(),
		StatusCode:  uint8(f.Status),
		UpdatedAt:   f.UpdatedAt.Format(time.RFC3339),
	}
}

func NewFlightHandler(flightSvc flights.FlightUseCase, suretySvc insurance.SuretyUseCase) *FlightHandler {
	return &FlightHandler{flights: flightSvc, surety: suretySvc}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.register)
	router.GET("/key", h.key)
	router.GET("/count", h.count)
	router.GET("/:key", h.get)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.flights.ListInsurable(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]flightResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFlightResponse(f))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) register(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var req registerFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, err := h.surety.RegisterFlight(c.Request.Context(), addr, surety.RegisterFlightInput{
		Code:        req.Code,
		Timestamp:   req.Timestamp,
		Price:       req.Price,
		Departure:   req.Departure,
		Destination: req.Destination,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key.String()})
}

// key derives a flight key from its identity without touching any state.
func (h *FlightHandler) key(c *gin.Context) {
	var ref flightRef
	if err := c.ShouldBindQuery(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := ref.key()
	c.JSON(http.StatusOK, gin.H{
		"key":        key.String(),
		"registered": h.surety.IsFlightRegistered(c.Request.Context(), key),
	})
}

func (h *FlightHandler) count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.surety.RegisteredFlightCount(c.Request.Context())})
}

func (h *FlightHandler) get(c *gin.Context) {
	key, ok := flightKeyParam(c, "key")
	if !ok {
		return
	}
	flight, err := h.flights.GetByKey(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}
