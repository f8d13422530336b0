package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"ticketeira/src/db"
	"ticketeira/src/models"
	"ticketeira/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var secret = []byte("secret")

type userMap map[uuid.UUID]*models.User

func (m userMap) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, db.ErrNotFound
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, sub string, exp time.Time) string {
	claims := &types.Claims{
		Email: "someone@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func identityRouter(users UserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerIdentity(secret, users))
	r.GET("/whoami", func(ctx *gin.Context) {
		caller := Caller(ctx)
		if caller == nil {
			ctx.JSON(http.StatusOK, gin.H{"caller": nil})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"caller": caller.UserID().String(), "admin": caller.IsAdmin()})
	})
	return r
}

func whoami(r *gin.Engine, authorization string) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestBearerIdentity(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: types.ROLE_ADMIN, RoleApproved: true}
	r := identityRouter(userMap{admin.ID: admin})

	t.Run("valid token resolves the user", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, secret, admin.ID.String(), time.Now().Add(time.Hour))
		body := whoami(r, "Bearer "+token)
		assert.Equal(t, admin.ID.String(), gjson.Get(body, "caller").String())
		assert.True(t, gjson.Get(body, "admin").Bool())
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, gjson.Null, gjson.Get(whoami(r, ""), "caller").Type)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, secret, admin.ID.String(), time.Now().Add(-time.Minute))
		assert.Equal(t, gjson.Null, gjson.Get(whoami(r, "Bearer "+token), "caller").Type)
	})

	t.Run("wrong key", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("other"), admin.ID.String(), time.Now().Add(time.Hour))
		assert.Equal(t, gjson.Null, gjson.Get(whoami(r, "Bearer "+token), "caller").Type)
	})

	t.Run("unknown user", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, secret, uuid.NewString(), time.Now().Add(time.Hour))
		assert.Equal(t, gjson.Null, gjson.Get(whoami(r, "Bearer "+token), "caller").Type)
	})

	t.Run("non uuid subject", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, secret, "42", time.Now().Add(time.Hour))
		assert.Equal(t, gjson.Null, gjson.Get(whoami(r, "Bearer "+token), "caller").Type)
	})
}

func TestSecureHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecureHeaders)
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func limitedRouter(rd *redis.Client, limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/checkout", RateLimit(rd, "checkout", limit), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	return r
}

func post(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	return w
}

func TestRateLimit(t *testing.T) {
	key := "ratelimit:checkout:ip:192.0.2.1"

	t.Run("first request opens the window", func(t *testing.T) {
		rd, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetVal(1)
		mock.ExpectExpire(key, time.Minute).SetVal(true)

		w := post(limitedRouter(rd, 2))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("over the limit", func(t *testing.T) {
		rd, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetVal(3)

		w := post(limitedRouter(rd, 2))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "too many requests", gjson.Get(w.Body.String(), "error").String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure allows the request", func(t *testing.T) {
		rd, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

		w := post(limitedRouter(rd, 2))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no redis configured", func(t *testing.T) {
		w := post(limitedRouter(nil, 2))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
