package authz

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carelink.id/clinicapi/pkg/apperror"
)

const identityKey = "identity"

// SetIdentity stores the resolved identity on the request context.
// Called by the auth middleware only.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// FromContext returns the identity set by the auth middleware.
func FromContext(c *gin.Context) (Identity, error) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, apperror.ErrUnauthorized
	}

	id, ok := v.(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, apperror.ErrUnauthorized
	}

	return id, nil
}
