package http

import (
	"net/http"
	"strings"

	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "session"
	claimsKey     = "session_claims"
)

func sessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if v, err := c.Cookie(sessionCookie); err == nil {
		return v
	}
	return ""
}

// authenticate requires a valid session token from the cookie or a Bearer
// header and stores its claims on the context.
func (h *Handler) authenticate(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	claims, err := h.auth.ParseToken(token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(claimsKey, claims)
	c.Next()
}

func requireStaff(c *gin.Context) {
	claims := sessionClaims(c)
	if claims == nil || !claims.Staff {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	c.Next()
}

func sessionClaims(c *gin.Context) *services.SessionClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.SessionClaims)
	return claims
}
