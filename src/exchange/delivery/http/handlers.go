package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/blockhaven/backend/src/exchange/domain"
	"github.com/blockhaven/backend/src/exchange/usecase"
	"github.com/blockhaven/backend/src/logger"

	"github.com/gin-gonic/gin"
)

// Handler binds usecase + logger
type Handler struct {
	service *usecase.Service
	logger  *logger.Logger
}

func NewHandler(s *usecase.Service, l *logger.Logger) *Handler {
	return &Handler{service: s, logger: l}
}

// RegisterRoutes mounts the exchange surface under /exchanges. Catalog reads
// and creation are public; transaction lookups need a token and catalog syncs
// need an admin token.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	ex := r.Group("/exchanges")

	ex.POST("", h.CreateExchange)
	ex.GET("/currencies", h.ListCurrencies)
	ex.GET("/enhanced-pairs", h.ListEnhancedPairs)
	ex.GET("/estimate", h.GetEstimatedAmount)
	ex.GET("/min-amount", h.GetMinAmount)

	ex.GET("", auth, h.ListExchanges)
	ex.GET("/:id", auth, h.GetExchangeByID)
	ex.GET("/transaction/:transactionId", auth, h.GetExchangeByTransactionID)
	ex.PUT("/:transactionId/status", auth, h.UpdateExchangeStatus)

	ex.POST("/fetch-currencies", auth, admin, h.FetchCurrencies)
	ex.POST("/fetch-pairs", auth, admin, h.FetchPairs)
}

// respondError maps the domain taxonomy onto HTTP. Provider rejections are
// the caller's problem (bad pair, amount below minimum); provider outages and
// broken responses are a bad gateway, not our fault and not the caller's.
func (h *Handler) respondError(c *gin.Context, op string, err error) {
	var vErr *domain.ValidationError
	var pErr *domain.ProviderError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": vErr.Error()})
	case errors.As(err, &pErr):
		h.logger.Warnf("%s provider rejection: %v", op, pErr)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": pErr.Message, "code": pErr.Code})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	case errors.Is(err, domain.ErrProviderUnavailable):
		h.logger.Errorf("%s provider unavailable: %v", op, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "exchange provider unavailable"})
	case errors.Is(err, domain.ErrProviderContractViolation):
		h.logger.Errorf("%s provider contract violation: %v", op, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "exchange provider returned an invalid response"})
	default:
		h.logger.Errorf("%s err: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}

// clientIP prefers forwarding headers set by the edge proxy; the provider
// uses it for fraud scoring.
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if rip := c.GetHeader("X-Real-IP"); rip != "" {
		return rip
	}
	return c.ClientIP()
}

// CreateExchange godoc
//
//	@Summary		Create an exchange transaction
//	@Description	Creates the transaction at the provider and records it locally
//	@Tags			exchange
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateExchangeRequestBody	true	"Request body"
//	@Success		201	{object}	object{success=bool,data=ExchangeCreatedDto}
//	@Failure		400	{object}	object{success=bool,error=string}
//	@Failure		502	{object}	object{success=bool,error=string}
//	@Router			/exchanges [post]
func (h *Handler) CreateExchange(c *gin.Context) {
	ctx := c.Request.Context()

	var body CreateExchangeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Errorf("CreateExchange bind err: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := h.service.CreateExchange(ctx, domain.CreateExchangeRequest{
		FromCurrency:  body.FromCurrency,
		FromNetwork:   body.FromNetwork,
		ToCurrency:    body.ToCurrency,
		ToNetwork:     body.ToNetwork,
		FromAmount:    body.FromAmount,
		ToAmount:      body.ToAmount,
		Address:       body.Address,
		ExtraID:       body.ExtraID,
		RefundAddress: body.RefundAddress,
		RefundExtraID: body.RefundExtraID,
		ContactEmail:  body.ContactEmail,
		Flow:          domain.Flow(body.Flow),
		Type:          domain.ExchangeType(body.Type),
		RateID:        body.RateID,
		UserID:        body.UserID,
		ClientIP:      clientIP(c),
	})
	if err != nil {
		h.respondError(c, "CreateExchange", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": ExchangeCreatedDtoFromDomain(result.Exchange)})
}

// ListExchanges godoc
//
//	@Summary		List exchange transactions
//	@Description	Returns the caller's transactions newest first; admins see all
//	@Tags			exchange
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{success=bool,data=[]ExchangeDto}
//	@Failure		401	{object}	object{success=bool,error=string}
//	@Router			/exchanges [get]
func (h *Handler) ListExchanges(c *gin.Context) {
	ctx := c.Request.Context()

	var userID *string
	if !c.GetBool("isAdmin") {
		uid := c.GetString("userID")
		userID = &uid
	}

	rows, err := h.service.ListExchanges(ctx, userID)
	if err != nil {
		h.respondError(c, "ListExchanges", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ExchangeDtosFromDomain(rows)})
}

// GetExchangeByID godoc
//
//	@Summary		Get an exchange by database id
//	@Tags			exchange
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Exchange id"
//	@Success		200	{object}	object{success=bool,data=ExchangeDto}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Router			/exchanges/{id} [get]
func (h *Handler) GetExchangeByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	row, err := h.service.GetExchangeByID(ctx, uint(id))
	if err != nil {
		h.respondError(c, "GetExchangeByID", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ExchangeDtoFromDomain(row)})
}

// GetExchangeByTransactionID godoc
//
//	@Summary		Get an exchange by provider transaction id
//	@Tags			exchange
//	@Produce		json
//	@Security		BearerAuth
//	@Param			transactionId	path		string	true	"Provider transaction id"
//	@Success		200	{object}	object{success=bool,data=ExchangeDto}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Router			/exchanges/transaction/{transactionId} [get]
func (h *Handler) GetExchangeByTransactionID(c *gin.Context) {
	ctx := c.Request.Context()

	row, err := h.service.GetExchangeByTransactionID(ctx, c.Param("transactionId"))
	if err != nil {
		h.respondError(c, "GetExchangeByTransactionID", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ExchangeDtoFromDomain(row)})
}

// UpdateExchangeStatus godoc
//
//	@Summary		Refresh an exchange's status from the provider
//	@Tags			exchange
//	@Produce		json
//	@Security		BearerAuth
//	@Param			transactionId	path		string	true	"Provider transaction id"
//	@Success		200	{object}	object{success=bool,data=ExchangeDto}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Failure		502	{object}	object{success=bool,error=string}
//	@Router			/exchanges/{transactionId}/status [put]
func (h *Handler) UpdateExchangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	row, err := h.service.UpdateExchangeStatus(ctx, c.Param("transactionId"))
	if err != nil {
		h.respondError(c, "UpdateExchangeStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ExchangeDtoFromDomain(row)})
}

// ListCurrencies godoc
//
//	@Summary		List available currencies
//	@Description	Currency catalog merged with currencies appearing only on pair legs
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	object{success=bool,data=[]CurrencyDto}
//	@Router			/exchanges/currencies [get]
func (h *Handler) ListCurrencies(c *gin.Context) {
	ctx := c.Request.Context()

	currencies, err := h.service.ListAvailableCurrencies(ctx)
	if err != nil {
		h.respondError(c, "ListCurrencies", err)
		return
	}
	dtos := make([]CurrencyDto, len(currencies))
	for i, cur := range currencies {
		dtos[i] = CurrencyDtoFromDomain(cur)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dtos})
}

// ListEnhancedPairs godoc
//
//	@Summary		List tradable pairs with display metadata
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	object{success=bool,data=[]EnhancedPairDto}
//	@Router			/exchanges/enhanced-pairs [get]
func (h *Handler) ListEnhancedPairs(c *gin.Context) {
	ctx := c.Request.Context()

	pairs, err := h.service.GetEnhancedPairs(ctx)
	if err != nil {
		h.respondError(c, "ListEnhancedPairs", err)
		return
	}
	dtos := make([]EnhancedPairDto, len(pairs))
	for i, p := range pairs {
		dtos[i] = EnhancedPairDtoFromDomain(p)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dtos})
}

// GetEstimatedAmount godoc
//
//	@Summary		Estimate a conversion
//	@Tags			catalog
//	@Produce		json
//	@Param			fromCurrency	query		string	true	"Source ticker"
//	@Param			toCurrency		query		string	true	"Destination ticker"
//	@Param			fromAmount		query		string	false	"Amount to send"
//	@Param			toAmount		query		string	false	"Amount to receive (reverse)"
//	@Param			fromNetwork		query		string	false	"Source network"
//	@Param			toNetwork		query		string	false	"Destination network"
//	@Param			flow			query		string	false	"standard or fixed-rate"
//	@Param			type			query		string	false	"direct or reverse"
//	@Success		200	{object}	object{success=bool,data=EstimateDto}
//	@Failure		400	{object}	object{success=bool,error=string}
//	@Router			/exchanges/estimate [get]
func (h *Handler) GetEstimatedAmount(c *gin.Context) {
	ctx := c.Request.Context()

	est, err := h.service.GetEstimatedAmount(ctx, domain.EstimateRequest{
		FromCurrency: c.Query("fromCurrency"),
		ToCurrency:   c.Query("toCurrency"),
		FromAmount:   c.Query("fromAmount"),
		ToAmount:     c.Query("toAmount"),
		FromNetwork:  c.Query("fromNetwork"),
		ToNetwork:    c.Query("toNetwork"),
		Flow:         domain.Flow(c.Query("flow")),
		Type:         domain.ExchangeType(c.Query("type")),
	})
	if err != nil {
		h.respondError(c, "GetEstimatedAmount", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": EstimateDtoFromDomain(est)})
}

// GetMinAmount godoc
//
//	@Summary		Get the minimum exchangeable amount for a pair
//	@Tags			catalog
//	@Produce		json
//	@Param			fromCurrency	query		string	true	"Source ticker"
//	@Param			toCurrency		query		string	true	"Destination ticker"
//	@Param			fromNetwork		query		string	false	"Source network"
//	@Param			toNetwork		query		string	false	"Destination network"
//	@Param			flow			query		string	false	"standard or fixed-rate"
//	@Success		200	{object}	object{success=bool,data=MinAmountDto}
//	@Failure		400	{object}	object{success=bool,error=string}
//	@Router			/exchanges/min-amount [get]
func (h *Handler) GetMinAmount(c *gin.Context) {
	ctx := c.Request.Context()

	min, err := h.service.GetMinAmount(ctx, domain.EstimateRequest{
		FromCurrency: c.Query("fromCurrency"),
		ToCurrency:   c.Query("toCurrency"),
		FromNetwork:  c.Query("fromNetwork"),
		ToNetwork:    c.Query("toNetwork"),
		Flow:         domain.Flow(c.Query("flow")),
	})
	if err != nil {
		h.respondError(c, "GetMinAmount", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": MinAmountDto{
		FromCurrency: min.FromCurrency,
		FromNetwork:  min.FromNetwork,
		ToCurrency:   min.ToCurrency,
		ToNetwork:    min.ToNetwork,
		Flow:         string(min.Flow),
		MinAmount:    min.MinAmount,
	}})
}

// FetchCurrencies godoc
//
//	@Summary		Sync the currency catalog from the provider
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{success=bool,data=SyncReportDto}
//	@Failure		502	{object}	object{success=bool,error=string}
//	@Router			/exchanges/fetch-currencies [post]
func (h *Handler) FetchCurrencies(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.service.SyncCurrencies(ctx)
	if err != nil {
		h.respondError(c, "FetchCurrencies", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": SyncReportDtoFromDomain(report)})
}

// FetchPairs godoc
//
//	@Summary		Sync the full catalog (currencies, then pairs) from the provider
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{success=bool,data=object{currencies=SyncReportDto,pairs=SyncReportDto}}
//	@Failure		502	{object}	object{success=bool,error=string}
//	@Router			/exchanges/fetch-pairs [post]
func (h *Handler) FetchPairs(c *gin.Context) {
	ctx := c.Request.Context()

	curReport, pairReport, err := h.service.SyncAll(ctx)
	if err != nil {
		h.respondError(c, "FetchPairs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"currencies": SyncReportDtoFromDomain(curReport),
		"pairs":      SyncReportDtoFromDomain(pairReport),
	}})
}
