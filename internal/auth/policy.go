package auth

import (
	"path"
	"slices"

	"github.com/gin-gonic/gin"
)

// Policy describes who may call a route.
//
// Roles nil means no role list is declared. AdminRole empty means no admin
// marker is declared.
type Policy struct {
	Public    bool
	Roles     []Role
	AdminRole Role
}

// PublicRoute skips both guards.
var PublicRoute = Policy{Public: true}

// Authenticated admits any caller holding a valid token.
var Authenticated = Policy{}

// RequireRoles admits callers whose role is listed. ADMIN always passes.
func RequireRoles(roles ...Role) Policy {
	return Policy{Roles: roles}
}

// AdminOnly admits callers whose role equals the admin marker.
func AdminOnly() Policy {
	return Policy{AdminRole: RoleAdmin}
}

// Authorize decides whether role satisfies p.
func (p Policy) Authorize(role Role) bool {
	if p.Public {
		return true
	}
	if role == "" {
		return false
	}
	if len(p.Roles) == 0 {
		return p.AdminRole == "" || role == p.AdminRole
	}
	if role == RoleAdmin {
		return true
	}
	return slices.Contains(p.Roles, role)
}

// RouteTable maps "METHOD /full/path" to the route's policy. It is filled
// while the router is built and only read afterwards.
type RouteTable struct {
	policies map[string]Policy
}

// NewRouteTable returns an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{policies: make(map[string]Policy)}
}

// Set records policy for method and the absolute route path.
func (t *RouteTable) Set(method, fullPath string, policy Policy) {
	t.policies[routeKey(method, fullPath)] = policy
}

// Lookup returns the policy for the route. Unknown routes require authentication.
func (t *RouteTable) Lookup(method, fullPath string) Policy {
	if t == nil {
		return Authenticated
	}
	policy, ok := t.policies[routeKey(method, fullPath)]
	if !ok {
		return Authenticated
	}
	return policy
}

// Handle registers handlers on group and records policy under the path gin
// will report from Context.FullPath.
func (t *RouteTable) Handle(group *gin.RouterGroup, method, relativePath string, policy Policy, handlers ...gin.HandlerFunc) {
	t.Set(method, joinPaths(group.BasePath(), relativePath), policy)
	group.Handle(method, relativePath, handlers...)
}

func routeKey(method, fullPath string) string {
	return method + " " + fullPath
}

// joinPaths mirrors gin's own path joining for route groups.
func joinPaths(absolutePath, relativePath string) string {
	if relativePath == "" {
		return absolutePath
	}
	finalPath := path.Join(absolutePath, relativePath)
	if relativePath[len(relativePath)-1] == '/' && finalPath[len(finalPath)-1] != '/' {
		return finalPath + "/"
	}
	return finalPath
}
