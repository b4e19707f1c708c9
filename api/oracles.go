package api

import (
	"net/http"
	"sort"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/Domenick1991/flightsurety/internal/surety"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OracleHandler struct {
	service insurance.SuretyUseCase
}

type registerOracleRequest struct {
	Fee decimal.Decimal `json:"fee"`
}

type indexesResponse struct {
	Indexes [domain.IndexesPerOracle]uint8 `json:"indexes"`
}

type oracleResponseRequest struct {
	flightRef
	Index  *uint8 `json:"index" binding:"required"`
	Status uint8  `json:"status"`
}

type submitResponse struct {
	Accepted  bool   `json:"accepted"`
	Finalized bool   `json:"finalized"`
	Status    string `json:"status,omitempty"`
}

type reportResponse struct {
	Status    string   `json:"status"`
	Reporters []string `json:"reporters"`
}

type requestResponse struct {
	FlightKey string           `json:"flight_key"`
	Timestamp int64            `json:"timestamp"`
	Index     uint8            `json:"index"`
	Requester string           `json:"requester"`
	Open      bool             `json:"open"`
	Reports   []reportResponse `json:"reports"`
}

func toRequestResponse(r domain.OracleRequest) requestResponse {
	out := requestResponse{
		FlightKey: r.FlightKey.String(),
		Timestamp: r.Timestamp,
		Index:     r.Index,
		Requester: r.Requester.String(),
		Open:      r.Open,
		Reports:   make([]reportResponse, 0, len(r.Responses)),
	}
	for status, agents := range r.Responses {
		rep := reportResponse{Status: status.String(), Reporters: make([]string, 0, len(agents))}
		for _, a := range agents {
			rep.Reporters = append(rep.Reporters, a.String())
		}
		out.Reports = append(out.Reports, rep)
	}
	sort.Slice(out.Reports, func(i, j int) bool { return out.Reports[i].Status < out.Reports[j].Status })
	return out
}

func NewOracleHandler(service insurance.SuretyUseCase) *OracleHandler {
	return &OracleHandler{service: service}
}

func (h *OracleHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.register)
	router.GET("/fee", h.fee)
	router.GET("/me", h.indexes)
	router.POST("/requests", h.fetch)
	router.GET("/requests/:key/:timestamp", h.request)
	router.POST("/responses", h.submit)
}

func (h *OracleHandler) register(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var req registerOracleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	indexes, err := h.service.RegisterOracle(c.Request.Context(), insurance.RegisterOracleInput{
		Agent:      addr,
		Fee:        req.Fee,
		RequestKey: requestKey(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, indexesResponse{Indexes: indexes})
}

func (h *OracleHandler) fee(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fee": h.service.RegistrationFee(c.Request.Context())})
}

func (h *OracleHandler) indexes(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	indexes, err := h.service.OracleIndexes(c.Request.Context(), addr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, indexesResponse{Indexes: indexes})
}

// fetch opens a status request, or re-announces the open one, and returns its index.
func (h *OracleHandler) fetch(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var ref flightRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	index, err := h.service.FetchFlightStatus(c.Request.Context(), addr, ref.Code, ref.Destination, ref.Timestamp)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "flight_key": ref.key().String()})
}

func (h *OracleHandler) request(c *gin.Context) {
	key, ok := flightKeyParam(c, "key")
	if !ok {
		return
	}
	ts, ok := timestampParam(c, "timestamp")
	if !ok {
		return
	}
	req, err := h.service.Request(c.Request.Context(), key, ts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

func (h *OracleHandler) submit(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	var req oracleResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.SubmitOracleResponse(c.Request.Context(), addr, surety.OracleResponse{
		Index:       *req.Index,
		Code:        req.Code,
		Destination: req.Destination,
		Timestamp:   req.Timestamp,
		Status:      domain.FlightStatus(req.Status),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := submitResponse{Accepted: res.Accepted, Finalized: res.Finalized}
	if res.Finalized {
		out.Status = res.Status.String()
	}
	c.JSON(http.StatusOK, out)
}
