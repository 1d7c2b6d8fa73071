package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abduss/moviesapi/internal/httpx"
)

// RegisterRoutes mounts the public authentication endpoints under /auth.
func RegisterRoutes(router *gin.RouterGroup, routes *RouteTable, service *Service) {
	handler := &httpHandler{service: service}
	authGroup := router.Group("/auth")
	routes.Handle(authGroup, http.MethodPost, "/sign-up", PublicRoute, handler.signUp)
	routes.Handle(authGroup, http.MethodPost, "/sign-in", PublicRoute, handler.signIn)
	routes.Handle(authGroup, http.MethodPost, "/refresh-token", PublicRoute, handler.refreshToken)
}

type httpHandler struct {
	service *Service
}

type signUpRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// authResponse flattens the stripped user and its tokens into one object.
type authResponse struct {
	User
	TokenPair
}

func (h *httpHandler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	result, err := h.service.SignUp(c.Request.Context(), SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{User: result.User, TokenPair: result.Tokens})
}

func (h *httpHandler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{User: result.User, TokenPair: result.Tokens})
}

func (h *httpHandler) refreshToken(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	pair, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConflict):
		httpx.Error(c, http.StatusConflict, "User already exists")
	case errors.Is(err, ErrInvalidRefreshToken):
		httpx.Error(c, http.StatusUnauthorized, "Invalid or expired refresh token")
	default:
		httpx.Error(c, http.StatusUnauthorized, "")
	}
}
