package api

import (
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreditHandler struct {
	service insurance.SuretyUseCase
}

type balanceResponse struct {
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
}

type withdrawalResponse struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

func NewCreditHandler(service insurance.SuretyUseCase) *CreditHandler {
	return &CreditHandler{service: service}
}

func (h *CreditHandler) Register(router *gin.RouterGroup) {
	router.GET("/:address", h.balance)
	router.POST("/withdrawals", h.withdraw)
}

func (h *CreditHandler) balance(c *gin.Context) {
	addr := domain.Address(c.Param("address"))
	c.JSON(http.StatusOK, balanceResponse{
		Address: addr.String(),
		Balance: h.service.CreditBalance(c.Request.Context(), addr),
	})
}

func (h *CreditHandler) withdraw(c *gin.Context) {
	addr, ok := caller(c)
	if !ok {
		return
	}
	amount, err := h.service.Withdraw(c.Request.Context(), addr, requestKey(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawalResponse{Address: addr.String(), Amount: amount})
}
