package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eventsbackend/dto"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/services"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/auth"
)

type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

func setRefreshCookie(c *gin.Context, cfg CookieConfig, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Domain:   cfg.Domain,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(c *gin.Context, cfg CookieConfig) {
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, cfg.Domain, cfg.Secure, true)
}

// POST /auth/register
func Register(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}

		user, err := auth.Register(c.Request.Context(), services.RegisterInput{
			Username: body.Username,
			Email:    body.Email,
			Password: body.Password,
			Role:     models.Role(body.Role),
			Avatar:   body.Avatar,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// POST /auth/login
func Login(auth *services.AuthService, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}

		session, err := auth.Login(c.Request.Context(), body.Email, body.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		setRefreshCookie(c, cookie, session.Tokens.RefreshToken)
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  session.Tokens.AccessToken,
			"refreshToken": session.Tokens.RefreshToken,
			"user":         session.User,
		})
	}
}

// POST /auth/refresh reads the refresh token from the body, falling back to the cookie.
func Refresh(auth *services.AuthService, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RefreshDTO
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				badRequest(c, err)
				return
			}
		}
		token := body.RefreshToken
		if token == "" {
			token, _ = c.Cookie(refreshCookieName)
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token", "code": "UNAUTHENTICATED"})
			return
		}

		pair, err := auth.Refresh(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		setRefreshCookie(c, cookie, pair.RefreshToken)
		c.JSON(http.StatusOK, pair)
	}
}

// POST /auth/logout only clears the cookie. Issued tokens stay valid until they expire.
func Logout(cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clearRefreshCookie(c, cookie)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
