package handler

import (
	currencyapp "github.com/contaro/backend/internal/application/currency"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CurrencyHandler handles exchange rate API endpoints
type CurrencyHandler struct {
	BaseHandler
	currencyService *currencyapp.Service
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(currencyService *currencyapp.Service) *CurrencyHandler {
	return &CurrencyHandler{
		currencyService: currencyService,
	}
}

// RateResponse carries a resolved exchange rate into the base currency
type RateResponse struct {
	Currency string          `json:"currency"`
	Base     string          `json:"base"`
	Rate     decimal.Decimal `json:"rate"`
}

// ConvertRequest asks for an amount conversion into the base currency
type ConvertRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required,len=3"`
}

// ConvertResponse carries a converted amount
type ConvertResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	BaseCurrency string          `json:"base_currency"`
	RateApplied  decimal.Decimal `json:"rate_applied"`
}

// GetRate resolves the exchange rate for a currency into the base currency
func (h *CurrencyHandler) GetRate(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Currency code is required")
		return
	}

	currency := valueobject.Currency(code)
	rate, err := h.currencyService.ResolveRate(c.Request.Context(), currency, decimal.Zero)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, RateResponse{
		Currency: string(currency),
		Base:     string(valueobject.BaseCurrency),
		Rate:     rate,
	})
}

// Convert converts an amount from a document currency into the base currency
func (h *CurrencyHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	money, err := valueobject.NewMoney(req.Amount, valueobject.Currency(req.Currency))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	converted, err := h.currencyService.ToBase(c.Request.Context(), money)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	rate, err := h.currencyService.ResolveRate(c.Request.Context(), money.Currency(), decimal.Zero)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ConvertResponse{
		Amount:       money.Amount(),
		Currency:     string(money.Currency()),
		BaseAmount:   converted.Amount(),
		BaseCurrency: string(converted.Currency()),
		RateApplied:  rate,
	})
}
