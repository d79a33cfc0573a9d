package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/aquacred-registry/internal/model"
)

const principalKey = "principal"

type TokenParser interface {
	Parse(token string) (model.Principal, error)
}

// Auth rejects requests without a valid bearer token.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		principal, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Anonymous lets every request through without a principal.
func Anonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

// PrincipalFrom returns the authenticated caller, or an anonymous principal.
func PrincipalFrom(c *gin.Context) model.Principal {
	principal, _ := MustPrincipal(c)
	return principal
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": message})
}
