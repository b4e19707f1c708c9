package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/gin-gonic/gin"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrNotOperational, http.StatusServiceUnavailable},
	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrNotFunded, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrDuplicateRegistration, http.StatusConflict},
	{domain.ErrDuplicateSubmission, http.StatusConflict},
	{domain.ErrInvalidState, http.StatusConflict},
	{domain.ErrNothingToWithdraw, http.StatusConflict},
	{domain.ErrQuorumMismatch, http.StatusUnprocessableEntity},
	{domain.ErrInsufficientValue, http.StatusPaymentRequired},
}

func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
