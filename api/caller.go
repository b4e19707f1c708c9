package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	callerHeader         = "X-Caller-Address"
	idempotencyKeyHeader = "Idempotency-Key"
)

// caller returns the address the request acts for. The header is trusted as set by the
// authenticating gateway in front of the API. It writes a 401 and returns false when the header
// is missing.
func caller(c *gin.Context) (domain.Address, bool) {
	addr := domain.Address(c.GetHeader(callerHeader))
	if addr.IsZero() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + callerHeader + " header"})
		return "", false
	}
	return addr, true
}

func requestKey(c *gin.Context) string {
	return c.GetHeader(idempotencyKeyHeader)
}

func flightKeyParam(c *gin.Context, name string) (domain.FlightKey, bool) {
	key, err := domain.ParseFlightKey(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight key"})
		return key, false
	}
	return key, true
}

type flightRef struct {
	Code        string `json:"code" form:"code" binding:"required"`
	Destination string `json:"destination" form:"destination" binding:"required"`
	Timestamp   int64  `json:"timestamp" form:"timestamp" binding:"required"`
}

func (r flightRef) key() domain.FlightKey {
	return domain.NewFlightKey(r.Code, r.Destination, r.Timestamp)
}

func timestampParam(c *gin.Context, name string) (int64, bool) {
	ts, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timestamp"})
		return 0, false
	}
	return ts, true
}
