package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abduss/moviesapi/internal/httpx"
)

// CurrentUserKey is the gin context slot holding verified Claims.
const CurrentUserKey = "currentUser"

type tokenVerifier interface {
	Verify(token string) (Claims, error)
}

// AccessGuard lets public routes through and otherwise requires a valid
// "Bearer <token>" header, storing the decoded claims under CurrentUserKey.
func AccessGuard(verifier tokenVerifier, routes *RouteTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		if routes.Lookup(c.Request.Method, c.FullPath()).Public {
			c.Next()
			return
		}

		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			httpx.Abort(c, http.StatusUnauthorized, "")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			httpx.Abort(c, http.StatusUnauthorized, "")
			return
		}

		c.Set(CurrentUserKey, claims)
		c.Next()
	}
}

// RoleGuard applies the route's role policy to the claims left by AccessGuard.
func RoleGuard(routes *RouteTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(c, routes) {
			httpx.Abort(c, http.StatusUnauthorized, "")
			return
		}
		c.Next()
	}
}

func allowed(c *gin.Context, routes *RouteTable) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	policy := routes.Lookup(c.Request.Method, c.FullPath())
	if policy.Public {
		return true
	}
	claims, found := CurrentUser(c)
	if !found || claims.Role == "" {
		return false
	}
	return policy.Authorize(claims.Role)
}

// CurrentUser returns the claims attached by AccessGuard.
func CurrentUser(c *gin.Context) (Claims, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return Claims{}, false
	}
	claims, ok := value.(Claims)
	return claims, ok
}

// extractBearerToken accepts exactly "Bearer <token>".
func extractBearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" || strings.ContainsAny(token, " \t") {
		return ""
	}
	return token
}
