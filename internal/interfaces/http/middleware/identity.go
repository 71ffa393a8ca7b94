package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/application/identity"
)

// Simulated identity headers: the request layer trusts them as-is, there
// is no authentication behind them.
const (
	HeaderCustomerID = "X-Customer-Id"
	HeaderUserRole   = "X-User-Role"

	RoleAdmin = "ADMIN"

	identityKey = "caller_identity"
)

// Resolve reads the identity headers into an identity.Identity and stores
// it on the request context for downstream handlers.
func Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := identity.Identity{
			CustomerID: c.GetHeader(HeaderCustomerID),
			IsAdmin:    c.GetHeader(HeaderUserRole) == RoleAdmin,
		}
		c.Set(identityKey, caller)
		c.Next()
	}
}

// FromContext returns the identity Resolve stored, or a zero identity.
func FromContext(c *gin.Context) identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if caller, ok := v.(identity.Identity); ok {
			return caller
		}
	}
	return identity.Identity{}
}

// RequireCustomer rejects requests without the customer header.
func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if FromContext(c).CustomerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "the " + HeaderCustomerID + " header is required",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "not authorized, ADMIN role required",
			})
			return
		}
		c.Next()
	}
}
