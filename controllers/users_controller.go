package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eventsbackend/dto"
	"github.com/princinho/eventsbackend/middleware"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/services"
)

// GET /users/me
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// POST /admin/users
func CreateUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}

		user, err := auth.CreateUser(c.Request.Context(), services.RegisterInput{
			Username: body.Username,
			Email:    body.Email,
			Password: body.Password,
			Role:     models.Role(body.Role),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// POST /users/me/password
func ChangeMyPassword(auth *services.AuthService, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}

		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		if err := auth.ChangePassword(c.Request.Context(), p.ID, body.CurrentPassword, body.NewPassword); err != nil {
			respondError(c, err)
			return
		}

		clearRefreshCookie(c, cookie)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
