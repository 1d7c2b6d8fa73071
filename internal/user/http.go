package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abduss/moviesapi/internal/auth"
	"github.com/abduss/moviesapi/internal/httpx"
	"github.com/abduss/moviesapi/internal/logger"
)

// RegisterRoutes mounts the /users endpoints. Everything except /users/me is
// restricted to administrators.
func RegisterRoutes(router *gin.RouterGroup, routes *auth.RouteTable, service *Service) {
	handler := &httpHandler{service: service}
	admin := auth.RequireRoles(auth.RoleAdmin)

	group := router.Group("/users")
	routes.Handle(group, http.MethodPost, "", admin, handler.create)
	routes.Handle(group, http.MethodGet, "", admin, handler.list)
	routes.Handle(group, http.MethodGet, "/me", auth.Authenticated, handler.me)
	routes.Handle(group, http.MethodGet, "/:id", admin, handler.get)
	routes.Handle(group, http.MethodPatch, "/:id", admin, handler.update)
	routes.Handle(group, http.MethodDelete, "/:id", admin, handler.remove)
}

type httpHandler struct {
	service *Service
}

type createUserRequest struct {
	Email     string    `json:"email" binding:"required,email"`
	Password  string    `json:"password" binding:"required"`
	Role      auth.Role `json:"role"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
}

type updateUserRequest struct {
	Email     *string    `json:"email" binding:"omitempty,email"`
	Password  *string    `json:"password" binding:"omitempty,min=1"`
	Role      *auth.Role `json:"role"`
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
}

type listUsersQuery struct {
	Email     string `form:"email"`
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Role      string `form:"role"`
}

func (h *httpHandler) create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), CreateInput{
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err, "failed to create user")
		return
	}

	c.JSON(http.StatusOK, created)
}

func (h *httpHandler) list(c *gin.Context) {
	var query listUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	users, err := h.service.List(c.Request.Context(), auth.UserFilter{
		Email:     query.Email,
		FirstName: query.FirstName,
		LastName:  query.LastName,
		Role:      auth.Role(query.Role),
	})
	if err != nil {
		writeError(c, err, "failed to list users")
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *httpHandler) me(c *gin.Context) {
	claims, ok := auth.CurrentUser(c)
	if !ok {
		httpx.Error(c, http.StatusUnauthorized, "")
		return
	}

	found, err := h.service.Get(c.Request.Context(), claims.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "User not found"})
			return
		}
		writeError(c, err, "failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *httpHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "User not found"})
			return
		}
		writeError(c, err, "failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *httpHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, UpdateInput{
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	removed, err := h.service.Remove(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "failed to delete user")
		return
	}

	c.JSON(http.StatusOK, removed)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserExists):
		httpx.Error(c, http.StatusConflict, "User already exists")
	case errors.Is(err, ErrUserNotFound):
		httpx.Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrInvalidRole):
		httpx.Error(c, http.StatusBadRequest, "role must be one of ADMIN, USER")
	default:
		logger.FromContext(c).Error(fallback, zap.Error(err))
		httpx.Error(c, http.StatusInternalServerError, fallback)
	}
}
