package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abduss/moviesapi/internal/auth"
	"github.com/abduss/moviesapi/internal/config"
	"github.com/abduss/moviesapi/internal/httpx"
	"github.com/abduss/moviesapi/internal/logger"
	"github.com/abduss/moviesapi/internal/metrics"
	"github.com/abduss/moviesapi/internal/movie"
	"github.com/abduss/moviesapi/internal/user"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	DB           Pinger
	ObjectStore  Pinger
	Tokens       *auth.TokenService
	AuthService  *auth.Service
	UserService  *user.Service
	MovieService *movie.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
// Every route under the API group passes the access and role guards; the
// policy for each one is recorded as it is registered.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c).Error("panic recovered", zap.Any("panic", recovered))
		httpx.Abort(c, http.StatusInternalServerError, "")
	}))
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	router.NoRoute(func(c *gin.Context) {
		httpx.Error(c, http.StatusNotFound, "Cannot "+c.Request.Method+" "+c.Request.URL.Path)
	})

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	routes := auth.NewRouteTable()
	api := router.Group("")
	api.Use(auth.AccessGuard(deps.Tokens, routes), auth.RoleGuard(routes))

	if deps.AuthService != nil {
		limited := api.Group("", RateLimit(deps.Config.RateLimit.AuthRPS, deps.Config.RateLimit.AuthBurst))
		auth.RegisterRoutes(limited, routes, deps.AuthService)
	}
	if deps.UserService != nil {
		user.RegisterRoutes(api, routes, deps.UserService)
	}
	if deps.MovieService != nil {
		movie.RegisterRoutes(api, routes, deps.MovieService)
	}

	return router
}
