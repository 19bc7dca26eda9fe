package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"habit_tracker/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	ContextUserKey   = "user"   // *utils.TokenIdentity
	ContextUserIDKey = "userID" // string
)

// TokenVerifier checks a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// JWTAuthMiddleware validates JWT tokens and attaches the caller's identity.
// A missing or malformed header is 401; a token that fails verification is 403.
// Claims are trusted as issued: a deleted user's token works until it expires.
func JWTAuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c.GetHeader("Authorization")) // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		claims, err := tokens.Verify(tokenStr) // Parse the JWT token
		if err != nil {
			// Present but rejected: forbidden
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}
		identity := claims.Identity()
		c.Set(ContextUserKey, &identity)     // Store identity in context
		c.Set(ContextUserIDKey, identity.ID) // Store userID in context
		c.Next()                             // Proceed to the next handler
	}
}

// CurrentUser returns the identity attached by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (*utils.TokenIdentity, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*utils.TokenIdentity)
	return identity, ok && identity != nil
}
