package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abduss/moviesapi/internal/auth"
	"github.com/abduss/moviesapi/internal/config"
	"github.com/abduss/moviesapi/internal/movie"
	"github.com/abduss/moviesapi/internal/user"
)

type testApp struct {
	router *gin.Engine
	users  *userStore
	hasher auth.Hasher
}

func newTestApp(t *testing.T, cfg config.Config, db, objects Pinger) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("e2e-secret", time.Hour)
	require.NoError(t, err)

	users := newUserStore()
	hasher := auth.NewHasher(4)
	router := NewRouter(Dependencies{
		Config:       cfg,
		DB:           db,
		ObjectStore:  objects,
		Tokens:       tokens,
		AuthService:  auth.NewService(users, hasher, tokens, nil),
		UserService:  user.NewService(users, hasher, nil),
		MovieService: movie.NewService(newMovieStore(), nil),
	})
	return testApp{router: router, users: users, hasher: hasher}
}

func (a testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestSignUpScenario(t *testing.T) {
	app := newTestApp(t, config.Config{}, stubPinger{}, nil)

	rec := app.request(t, http.MethodPost, "/auth/sign-up", "", map[string]string{"email": "a@b.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.NotNil(t, body["id"])
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, "USER", body["role"])
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.NotContains(t, body, "password")

	rec = app.request(t, http.MethodPost, "/auth/sign-up", "", map[string]string{"email": "a@b.com", "password": "secret"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFullWorkflow(t *testing.T) {
	app := newTestApp(t, config.Config{}, stubPinger{}, nil)

	// 1. Seed an administrator directly in the directory.
	hash, err := app.hasher.Hash("admin-pass")
	require.NoError(t, err)
	_, err = app.users.Create(context.Background(), auth.NewUser{Email: "admin@b.com", PasswordHash: hash, Role: auth.RoleAdmin})
	require.NoError(t, err)

	// 2. Sign in as admin.
	rec := app.request(t, http.MethodPost, "/auth/sign-in", "", map[string]string{"email": "admin@b.com", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	adminToken := decode(t, rec)["accessToken"].(string)

	// 3. Register a regular user.
	rec = app.request(t, http.MethodPost, "/auth/sign-up", "", map[string]string{"email": "u@b.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	signedUp := decode(t, rec)
	userToken := signedUp["accessToken"].(string)
	refreshToken := signedUp["refreshToken"].(string)

	// 4. The user can see itself but not the user list.
	rec = app.request(t, http.MethodGet, "/users/me", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u@b.com", decode(t, rec)["email"])

	rec = app.request(t, http.MethodGet, "/users", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 5. Admin creates a movie; the user can read it but not change it.
	rec = app.request(t, http.MethodPost, "/movies", adminToken, map[string]any{"title": "A New Hope", "episode_id": 4, "director": "George Lucas"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.request(t, http.MethodGet, "/movies", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A New Hope")

	rec = app.request(t, http.MethodDelete, "/movies/1", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 6. Admin promotes the user; a refresh picks up the new role.
	rec = app.request(t, http.MethodPatch, "/users/2", adminToken, map[string]string{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.request(t, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": refreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	promotedToken := decode(t, rec)["accessToken"].(string)

	rec = app.request(t, http.MethodDelete, "/movies/1", promotedToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 7. Once the user is deleted its refresh token stops working.
	rec = app.request(t, http.MethodDelete, "/users/2", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(t, http.MethodPost, "/auth/refresh-token", "", map[string]string{"refreshToken": refreshToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired refresh token", decode(t, rec)["message"])
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	app := newTestApp(t, config.Config{}, stubPinger{}, nil)

	for _, header := range []string{"", "Basic xyz", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		body := decode(t, rec)
		assert.Equal(t, "Unauthorized", body["message"])
		assert.Equal(t, float64(401), body["statusCode"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, config.Config{}, stubPinger{}, stubPinger{})
	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, "/health/ready", "", nil).Code)

	degraded := newTestApp(t, config.Config{}, stubPinger{}, stubPinger{err: errDown})
	rec := degraded.request(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "minio", decode(t, rec)["component"])

	dbDown := newTestApp(t, config.Config{}, stubPinger{err: errDown}, nil)
	rec = dbDown.request(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "postgres", decode(t, rec)["component"])
}

func TestMetricsAndUnknownRoutes(t *testing.T) {
	cfg := config.Config{Metrics: config.MetricsConfig{PrometheusPath: "/metrics"}}
	app := newTestApp(t, cfg, stubPinger{}, nil)
	require.Equal(t, http.StatusOK, app.request(t, http.MethodGet, "/health/live", "", nil).Code)

	rec := app.request(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "movies_api_http_requests_total")

	rec = app.request(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{AuthRPS: 1, AuthBurst: 2}}
	app := newTestApp(t, cfg, stubPinger{}, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := app.request(t, http.MethodPost, "/auth/sign-in", "", map[string]string{"email": "x@b.com", "password": "nope"})
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
