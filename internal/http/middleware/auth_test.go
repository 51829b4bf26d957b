package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/service"
)

func newAuthRouter(tokens *service.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet(ContextUserIDKey)})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := newAuthRouter(tokens)

	user := &models.User{ID: uuid.New(), Role: models.RoleWorker}
	pair, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tokens := service.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := newAuthRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	tokens := service.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := newAuthRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_Arbiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/resolve",
		func(c *gin.Context) {
			c.Set(ContextRoleKey, models.RoleArbiter)
			c.Next()
		},
		RequireRole(models.RoleArbiter),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req, _ := http.NewRequest("POST", "/resolve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/resolve",
		func(c *gin.Context) {
			c.Set(ContextRoleKey, models.RoleClient)
			c.Next()
		},
		RequireRole(models.RoleArbiter),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req, _ := http.NewRequest("POST", "/resolve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
