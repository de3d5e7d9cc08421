package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blockhaven/backend/src/logger"
	"github.com/blockhaven/backend/src/user/domain"
	"github.com/blockhaven/backend/src/user/usecase"

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

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	users.POST("/login", h.Login)
	users.GET("/me", h.RequireAuth(), h.Me)
}

// LoginRequestBody carries login credentials.
// swagger:model LoginRequestBody
type LoginRequestBody struct {
	Email    string `json:"email" example:"admin@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// UserDto is a public view of an account.
// swagger:model UserDto
type UserDto struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func userDto(u *domain.User) UserDto {
	return UserDto{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// Login godoc
//
//	@Summary		Authenticate and receive a bearer token
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequestBody	true	"Credentials"
//	@Success		200	{object}	object{success=bool,token=string,user=UserDto}
//	@Failure		401	{object}	object{success=bool,error=string}
//	@Router			/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var body LoginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	token, u, err := h.service.Authenticate(ctx, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
			return
		}
		h.logger.Errorf("Login err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": userDto(u)})
}

// Me godoc
//
//	@Summary		Get the authenticated account
//	@Tags			user
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{success=bool,user=UserDto}
//	@Failure		401	{object}	object{success=bool,error=string}
//	@Router			/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	u, err := h.service.GetByID(ctx, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		h.logger.Errorf("Me err: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": userDto(u)})
}

// RequireAuth validates the bearer token and stores userID and isAdmin on the
// request context for downstream handlers.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing bearer token"})
			return
		}
		claims, err := h.service.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}
		c.Set("userID", claims.Subject)
		c.Set("isAdmin", claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "admin access required"})
			return
		}
		c.Next()
	}
}
