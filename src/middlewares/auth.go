package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"ticketeira/src/db"
	"ticketeira/src/models"
	"ticketeira/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const callerKey = "caller"

type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BearerIdentity resolves the caller from an HS256 bearer token. Requests
// without a valid token continue with no caller; the service decides whether
// one is required.
func BearerIdentity(secret []byte, users UserLoader) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqToken, ok := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(reqToken) == "" {
			return
		}
		claims := &types.Claims{}
		tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !tkn.Valid {
			slog.Debug("Rejected bearer token", "error", err)
			return
		}
		uid, err := uuid.Parse(claims.Subject)
		if err != nil {
			slog.Debug("Token subject is not a user id", "sub", claims.Subject)
			return
		}
		user, err := users.GetUser(ctx.Request.Context(), uid)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				slog.Warn("Could not load token user", "user_id", uid, "error", err.Error())
			}
			return
		}
		ctx.Set(callerKey, user.Identity())
	}
}

// Caller returns the identity set by BearerIdentity, or nil.
func Caller(ctx *gin.Context) types.Caller {
	v, ok := ctx.Get(callerKey)
	if !ok {
		return nil
	}
	caller, ok := v.(types.Caller)
	if !ok {
		return nil
	}
	return caller
}
