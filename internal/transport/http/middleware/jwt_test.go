package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"codethium-server/internal/pkg/jwtutil"
)

const testSecret = "test-secret"

func newGateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthJWT(testSecret), func(c *gin.Context) {
		userID, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func mintToken(t *testing.T, userID uint, ttl time.Duration) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(testSecret, ttl, userID, "alice")
	require.NoError(t, err)
	return token
}

func TestAuthJWT_NoToken(t *testing.T) {
	router := newGateRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"No token provided"}`, rec.Body.String())
}

func TestAuthJWT_BearerHeader(t *testing.T) {
	router := newGateRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 7, time.Hour))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user_id":7}`, rec.Body.String())
}

func TestAuthJWT_Cookie(t *testing.T) {
	router := newGateRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: mintToken(t, 9, time.Hour)})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user_id":9}`, rec.Body.String())
}

func TestAuthJWT_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	router := newGateRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 1, time.Hour))
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: mintToken(t, 2, time.Hour)})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user_id":1}`, rec.Body.String())
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	router := newGateRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, 7, -time.Minute))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"Invalid token"}`, rec.Body.String())
}

func TestAuthJWT_GarbageToken(t *testing.T) {
	router := newGateRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
