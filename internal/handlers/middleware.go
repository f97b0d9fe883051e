package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SP-DOCS/internal/services"
)

const (
	headerOrganizationID = "X-Organization-Id"
	headerUserID         = "X-User-Id"

	ctxOrganizationID = "organization_id"
	ctxUserID         = "user_id"
)

// RequireIdentity enforces the tenant headers set by the auth gateway.
// Every route under /api/v1 is organization-scoped, so a request with no
// organization is rejected before it reaches a handler.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetHeader(headerOrganizationID)
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing " + headerOrganizationID + " header"})
			return
		}
		c.Set(ctxOrganizationID, orgID)
		c.Set(ctxUserID, c.GetHeader(headerUserID))
		c.Next()
	}
}

func orgID(c *gin.Context) string {
	return c.GetString(ctxOrganizationID)
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
