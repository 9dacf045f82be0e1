package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the caller placed on the context by AuthRequired.
type Identity struct {
	UserID uuid.UUID
	Roles  []string
}

// GetIdentity reads the caller. ok is false on routes without AuthRequired.
func GetIdentity(c *gin.Context) (Identity, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return Identity{}, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return Identity{}, false
	}

	id := Identity{UserID: userID}
	if roles, exists := c.Get(ContextRolesKey); exists {
		id.Roles, _ = roles.([]string)
	}
	return id, true
}

// MustGetIdentity is GetIdentity that aborts with 401 when no caller is set.
func MustGetIdentity(c *gin.Context) (Identity, bool) {
	id, ok := GetIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}
