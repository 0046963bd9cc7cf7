package auth

import "github.com/gin-gonic/gin"

const identityKey = "auth.identity"

// Identity is the authenticated caller for a single request. It replaces
// ambient role state: every operation that needs authorization receives one
// explicitly.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IsStaff reports whether the identity may use staff tooling.
func (id Identity) IsStaff() bool {
	return id.Role == "staff" || id.Role == "admin"
}

// Attach stores the identity on the request context.
func Attach(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// FromContext returns the identity attached by Middleware.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
