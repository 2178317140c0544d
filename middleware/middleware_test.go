package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/services"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]*models.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "boom":
		return nil, errors.New("database down")
	case "gone":
		return nil, services.ErrPrincipalNotFound
	}
	user, ok := s[token]
	if !ok {
		return nil, services.ErrInvalidToken
	}
	return user, nil
}

func newRouter(auth Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(auth)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p, err := MustPrincipal(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.ID.Hex())
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID(), Role: models.RoleUser}
	r := newRouter(stubAuth{"good": user})

	w := get(r, "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID.Hex(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "bad").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "gone").Code)
	assert.Equal(t, http.StatusInternalServerError, get(r, "boom").Code)
}

func TestRequireRoles(t *testing.T) {
	admin := &models.User{ID: bson.NewObjectID(), Role: models.RoleAdmin}
	attendee := &models.User{ID: bson.NewObjectID(), Role: models.RoleUser}
	r := newRouter(stubAuth{"admin": admin, "user": attendee}, RequireRoles(models.RoleAdmin, models.RoleOrganizer))

	assert.Equal(t, http.StatusOK, get(r, "admin").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "user").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("kaboom"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/ok", "/missing", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
		assert.Equal(t, "/fail", entries[2].ContextMap()["path"])
		assert.Equal(t, "kaboom", entries[2].ContextMap()["error"])
	}
}
