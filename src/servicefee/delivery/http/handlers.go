package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blockhaven/backend/src/logger"
	"github.com/blockhaven/backend/src/servicefee/domain"
	"github.com/blockhaven/backend/src/servicefee/usecase"
	"github.com/shopspring/decimal"

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

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	fees := r.Group("/service-fees")
	fees.GET("/active", h.GetActiveFee)

	fees.GET("", auth, admin, h.ListFees)
	fees.POST("", auth, admin, h.CreateFee)
	fees.PUT("/:id", auth, admin, h.UpdateFee)
	fees.DELETE("/:id", auth, admin, h.DeleteFee)
	fees.PUT("/:id/activate", auth, admin, h.ActivateFee)
}

// FeeDto is one commission configuration.
// swagger:model FeeDto
type FeeDto struct {
	ID        uint            `json:"id" example:"1"`
	Name      string          `json:"name" example:"default"`
	FeeType   string          `json:"feeType" example:"percentage"`
	Amount    decimal.Decimal `json:"amount" example:"0.5"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func feeDto(f *domain.ServiceFee) FeeDto {
	return FeeDto{
		ID:        f.ID,
		Name:      f.Name,
		FeeType:   string(f.FeeType),
		Amount:    f.Amount,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// FeeRequestBody creates or updates a commission configuration.
// swagger:model FeeRequestBody
type FeeRequestBody struct {
	Name    string `json:"name" example:"default"`
	FeeType string `json:"feeType" example:"percentage"`
	Amount  string `json:"amount" example:"0.5"` // decimal string
}

func (b FeeRequestBody) parse() (domain.FeeType, decimal.Decimal, error) {
	ft := domain.FeeType(b.FeeType)
	if ft != domain.FeePercentage && ft != domain.FeeFixed {
		return "", decimal.Decimal{}, errors.New("feeType must be percentage or fixed")
	}
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil || amount.IsNegative() {
		return "", decimal.Decimal{}, errors.New("amount must be a non-negative decimal")
	}
	return ft, amount, nil
}

// GetActiveFee godoc
//
//	@Summary		Get the currently active service fee
//	@Tags			fees
//	@Produce		json
//	@Success		200	{object}	object{success=bool,data=FeeDto}
//	@Router			/service-fees/active [get]
func (h *Handler) GetActiveFee(c *gin.Context) {
	ctx := c.Request.Context()

	fee, err := h.service.GetActiveFee(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
			return
		}
		h.logger.Errorf("GetActiveFee err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": feeDto(fee)})
}

// ListFees godoc
//
//	@Summary		List all service fees
//	@Tags			fees
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{success=bool,data=[]FeeDto}
//	@Router			/service-fees [get]
func (h *Handler) ListFees(c *gin.Context) {
	ctx := c.Request.Context()

	fees, err := h.service.ListFees(ctx)
	if err != nil {
		h.logger.Errorf("ListFees err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	dtos := make([]FeeDto, len(fees))
	for i := range fees {
		dtos[i] = feeDto(&fees[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dtos})
}

// CreateFee godoc
//
//	@Summary		Create a service fee
//	@Tags			fees
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		FeeRequestBody	true	"Fee"
//	@Success		201	{object}	object{success=bool,data=FeeDto}
//	@Failure		400	{object}	object{success=bool,error=string}
//	@Router			/service-fees [post]
func (h *Handler) CreateFee(c *gin.Context) {
	ctx := c.Request.Context()

	var body FeeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	ft, amount, err := body.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	fee, err := h.service.CreateFee(ctx, body.Name, ft, amount)
	if err != nil {
		h.logger.Errorf("CreateFee err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": feeDto(fee)})
}

// UpdateFee godoc
//
//	@Summary		Update a service fee
//	@Tags			fees
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"Fee id"
//	@Param			request	body		FeeRequestBody	true	"Fee"
//	@Success		200	{object}	object{success=bool,data=FeeDto}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Router			/service-fees/{id} [put]
func (h *Handler) UpdateFee(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	var body FeeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	ft, amount, err := body.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	fee := &domain.ServiceFee{ID: uint(id), Name: body.Name, FeeType: ft, Amount: amount}
	if err := h.service.UpdateFee(ctx, fee); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		h.logger.Errorf("UpdateFee err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": feeDto(fee)})
}

// DeleteFee godoc
//
//	@Summary		Delete a service fee
//	@Tags			fees
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Fee id"
//	@Success		200	{object}	object{success=bool}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Router			/service-fees/{id} [delete]
func (h *Handler) DeleteFee(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	if err := h.service.DeleteFee(ctx, uint(id)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		h.logger.Errorf("DeleteFee err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ActivateFee godoc
//
//	@Summary		Make a fee the single active one
//	@Tags			fees
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Fee id"
//	@Success		200	{object}	object{success=bool}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Router			/service-fees/{id}/activate [put]
func (h *Handler) ActivateFee(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	if err := h.service.ActivateFee(ctx, uint(id)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		h.logger.Errorf("ActivateFee err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
