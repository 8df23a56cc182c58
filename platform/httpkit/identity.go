package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity describes the authenticated caller of a request. Handlers
// depend on this interface rather than on the JWT claims directly.
type Identity interface {
	UserID() uuid.UUID
	TenantID() uuid.UUID
	Email() string
	Roles() []string
	HasRole(role string) bool
}

type identity struct {
	userID   uuid.UUID
	tenantID uuid.UUID
	email    string
	roles    []string
}

func (i *identity) UserID() uuid.UUID   { return i.userID }
func (i *identity) TenantID() uuid.UUID { return i.tenantID }
func (i *identity) Email() string       { return i.email }
func (i *identity) Roles() []string     { return i.roles }

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

// NewIdentity builds an Identity. Exported for tests and for the auth
// middleware; feature code should only read the interface.
func NewIdentity(userID, tenantID uuid.UUID, email string, roles []string) Identity {
	return &identity{userID: userID, tenantID: tenantID, email: email, roles: roles}
}

// GetIdentity returns the Identity stored by AuthRequired, or false if
// the request was not authenticated.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MustGetIdentity returns the Identity or panics. Only call from
// handlers registered behind AuthRequired.
func MustGetIdentity(c *gin.Context) Identity {
	id, ok := GetIdentity(c)
	if !ok {
		panic("httpkit: identity missing from context, handler not behind AuthRequired")
	}
	return id
}
