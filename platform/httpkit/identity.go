// Package httpkit holds the gin glue shared by every module: identity
// extraction, middleware and error responses.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Identity is the authenticated caller as seen by handlers.
type Identity interface {
	UserID() uuid.UUID
	// Role is either RoleAdmin or RoleMember.
	Role() string
	IsAdmin() bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	role          string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID     { return i.userID }
func (i *identity) Role() string          { return i.role }
func (i *identity) IsAdmin() bool         { return i.role == RoleAdmin }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity reads the identity stored by AuthRequired. Missing or malformed
// values yield an unauthenticated identity.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	role, _ := c.Get(ContextRoleKey)
	roleName, _ := role.(string)
	if roleName != RoleAdmin {
		roleName = RoleMember
	}

	return &identity{userID: uid, role: roleName, authenticated: true}
}

// MustGetIdentity aborts with 401 and returns nil when the caller is anonymous.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: "unauthorized"})
		return nil
	}
	return id
}
