// Package tenants decides which clients an identity may see, which one is
// active for it, and guards the switch between them.
package tenants

import (
	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Identity is the caller acting on client data.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Key identifies one cached or in-flight query: a client and a window signature.
type Key struct {
	Tenant string `json:"client"`
	Window string `json:"window"`
}

// Resolution is the accessible set and the default pick for an identity.
type Resolution struct {
	Tenants []string `json:"clients"`
	Default string   `json:"default"`
}
