package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blockhaven/backend/src/faq/domain"
	"github.com/blockhaven/backend/src/faq/usecase"
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

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	faqs := r.Group("/faqs")
	faqs.GET("", h.ListPublic)

	faqs.GET("/all", auth, admin, h.ListAll)
	faqs.POST("", auth, admin, h.Create)
	faqs.PUT("/:id", auth, admin, h.Update)
	faqs.DELETE("/:id", auth, admin, h.Delete)
}

// FAQDto is one help-center entry.
// swagger:model FAQDto
type FAQDto struct {
	ID         uint      `json:"id" example:"1"`
	Question   string    `json:"question" example:"How long does an exchange take?"`
	Answer     string    `json:"answer" example:"Usually 10-60 minutes."`
	OrderIndex int       `json:"orderIndex" example:"0"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func faqDto(f *domain.FAQ) FAQDto {
	return FAQDto{
		ID:         f.ID,
		Question:   f.Question,
		Answer:     f.Answer,
		OrderIndex: f.OrderIndex,
		IsActive:   f.IsActive,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func faqDtos(rows []domain.FAQ) []FAQDto {
	dtos := make([]FAQDto, len(rows))
	for i := range rows {
		dtos[i] = faqDto(&rows[i])
	}
	return dtos
}

// FAQRequestBody creates or updates an entry.
// swagger:model FAQRequestBody
type FAQRequestBody struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	OrderIndex int    `json:"orderIndex"`
	IsActive   *bool  `json:"isActive,omitempty"`
}

// ListPublic godoc
//
//	@Summary		List active FAQ entries in display order
//	@Tags			faq
//	@Produce		json
//	@Success		200	{object}	object{success=bool,data=[]FAQDto}
//	@Router			/faqs [get]
func (h *Handler) ListPublic(c *gin.Context) {
	ctx := c.Request.Context()

	rows, err := h.service.ListPublic(ctx)
	if err != nil {
		h.logger.Errorf("ListPublic err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": faqDtos(rows)})
}

// ListAll godoc
//
//	@Summary		List all FAQ entries including inactive ones
//	@Tags			faq
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{success=bool,data=[]FAQDto}
//	@Router			/faqs/all [get]
func (h *Handler) ListAll(c *gin.Context) {
	ctx := c.Request.Context()

	rows, err := h.service.ListAll(ctx)
	if err != nil {
		h.logger.Errorf("ListAll err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": faqDtos(rows)})
}

// Create godoc
//
//	@Summary		Create an FAQ entry
//	@Tags			faq
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		FAQRequestBody	true	"Entry"
//	@Success		201	{object}	object{success=bool,data=FAQDto}
//	@Failure		400	{object}	object{success=bool,error=string}
//	@Router			/faqs [post]
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var body FAQRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if body.Question == "" || body.Answer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "question and answer are required"})
		return
	}

	f := &domain.FAQ{
		Question:   body.Question,
		Answer:     body.Answer,
		OrderIndex: body.OrderIndex,
		IsActive:   true,
	}
	if body.IsActive != nil {
		f.IsActive = *body.IsActive
	}
	if err := h.service.Create(ctx, f); err != nil {
		h.logger.Errorf("Create err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": faqDto(f)})
}

// Update godoc
//
//	@Summary		Update an FAQ entry
//	@Tags			faq
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"Entry id"
//	@Param			request	body		FAQRequestBody	true	"Entry"
//	@Success		200	{object}	object{success=bool,data=FAQDto}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Router			/faqs/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	var body FAQRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	f := &domain.FAQ{
		ID:         uint(id),
		Question:   body.Question,
		Answer:     body.Answer,
		OrderIndex: body.OrderIndex,
		IsActive:   true,
	}
	if body.IsActive != nil {
		f.IsActive = *body.IsActive
	}
	if err := h.service.Update(ctx, f); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		h.logger.Errorf("Update err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": faqDto(f)})
}

// Delete godoc
//
//	@Summary		Delete an FAQ entry
//	@Tags			faq
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Entry id"
//	@Success		200	{object}	object{success=bool}
//	@Failure		404	{object}	object{success=bool,error=string}
//	@Router			/faqs/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	if err := h.service.Delete(ctx, uint(id)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		h.logger.Errorf("Delete err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
