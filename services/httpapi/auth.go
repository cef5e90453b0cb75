package httpapi

import (
	"github.com/gin-gonic/gin"

	"taskops-controlplane/pkg/errutil"
	"taskops-controlplane/services/identity"
)

const actorKey = "httpapi.actor"

// Authenticate resolves the caller from HTTP basic credentials and stores
// the identity in the request context. Permission checks stay in the
// services; this middleware only answers "who is calling".
func (h *Handler) Authenticate(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		c.Header("WWW-Authenticate", `Basic realm="taskops"`)
		_ = c.Error(errutil.Unauthorized("missing credentials"))
		c.Abort()
		return
	}

	id, err := h.identity.Verify(c.Request.Context(), username, password)
	if err != nil {
		c.Header("WWW-Authenticate", `Basic realm="taskops"`)
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.Set(actorKey, *id)
	c.Next()
}

func mustActor(c *gin.Context) identity.Identity {
	return c.MustGet(actorKey).(identity.Identity)
}
