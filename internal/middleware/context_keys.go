package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	storeIDKey = contextKey("storeID")
	userIDKey  = contextKey("userID")

	headerStoreID = "X-Store-ID"
	headerUserID  = "X-User-ID"
)

// IdentityMiddleware copies the store and user identifiers injected by the
// fronting gateway into the gin context. Authentication itself happens
// upstream; this service only needs to know who is acting on which store.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID := c.GetHeader(headerStoreID)
		if storeID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Store-ID header required"})
			return
		}
		c.Set(string(storeIDKey), storeID)

		if userID := c.GetHeader(headerUserID); userID != "" {
			c.Set(string(userIDKey), userID)
		}

		c.Next()
	}
}

// GetStoreIDFromContext retrieves the acting store ID from the Gin context.
func GetStoreIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(string(storeIDKey))
	if !exists {
		return "", false
	}
	storeID, ok := v.(string)
	return storeID, ok && storeID != ""
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}
	userID, ok := v.(string)
	return userID, ok && userID != ""
}
