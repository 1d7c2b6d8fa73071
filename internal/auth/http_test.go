package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *memoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemoryStore()
	tokens, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	routes := NewRouteTable()
	router := gin.New()
	api := router.Group("")
	api.Use(AccessGuard(tokens, routes), RoleGuard(routes))
	RegisterRoutes(api, routes, NewService(store, NewHasher(4), tokens, nil))
	return router, store
}

func postJSON(router http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignUpEndpoint(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := postJSON(router, "/auth/sign-up", map[string]string{"email": "a@b.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, "USER", body["role"])
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "PasswordHash")

	rec = postJSON(router, "/auth/sign-up", map[string]string{"email": "a@b.com", "password": "secret"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestSignUpEndpointValidation(t *testing.T) {
	router, _ := newAuthRouter(t)

	rec := postJSON(router, "/auth/sign-up", map[string]string{"email": "not-an-email", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignInEndpoint(t *testing.T) {
	router, _ := newAuthRouter(t)
	require.Equal(t, http.StatusOK, postJSON(router, "/auth/sign-up", map[string]string{"email": "a@b.com", "password": "secret"}).Code)

	rec := postJSON(router, "/auth/sign-in", map[string]string{"email": "a@b.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "accessToken")

	rec = postJSON(router, "/auth/sign-in", map[string]string{"email": "a@b.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["statusCode"])
	assert.Equal(t, "Unauthorized", body["message"])
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestRefreshTokenEndpoint(t *testing.T) {
	router, _ := newAuthRouter(t)
	rec := postJSON(router, "/auth/sign-up", map[string]string{"email": "a@b.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	var signedUp struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signedUp))

	rec = postJSON(router, "/auth/refresh-token", map[string]string{"refreshToken": signedUp.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pair map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair["accessToken"])
	assert.NotEmpty(t, pair["refreshToken"])
	assert.NotContains(t, pair, "email")

	rec = postJSON(router, "/auth/refresh-token", map[string]string{"refreshToken": "bogus"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired refresh token")
}
