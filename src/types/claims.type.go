package types

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Caller is the authenticated identity behind a request.
type Caller interface {
	UserID() uuid.UUID
	Email() string
	IsAdmin() bool
}

type Identity struct {
	ID           uuid.UUID
	EmailAddress string
	Role         Role
	RoleApproved bool
}

func (i *Identity) UserID() uuid.UUID { return i.ID }

func (i *Identity) Email() string { return strings.TrimSpace(i.EmailAddress) }

// IsAdmin reports whether the caller holds an approved administrator role.
func (i *Identity) IsAdmin() bool {
	return i.Role == ROLE_ADMIN && i.RoleApproved
}
