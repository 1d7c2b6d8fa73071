package movie

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

// RegisterRoutes mounts the /movies endpoints. Reads need any valid token,
// writes need ADMIN.
func RegisterRoutes(router *gin.RouterGroup, routes *auth.RouteTable, service *Service) {
	handler := &httpHandler{service: service}
	admin := auth.RequireRoles(auth.RoleAdmin)

	group := router.Group("/movies")
	routes.Handle(group, http.MethodPost, "", admin, handler.create)
	routes.Handle(group, http.MethodGet, "", auth.Authenticated, handler.list)
	routes.Handle(group, http.MethodGet, "/:id", auth.Authenticated, handler.get)
	routes.Handle(group, http.MethodPatch, "/:id", admin, handler.update)
	routes.Handle(group, http.MethodDelete, "/:id", admin, handler.remove)
}

type httpHandler struct {
	service *Service
}

type createMovieRequest struct {
	Title        string   `json:"title" binding:"required"`
	EpisodeID    int      `json:"episode_id" binding:"required"`
	OpeningCrawl string   `json:"opening_crawl"`
	Director     string   `json:"director" binding:"required"`
	Producer     string   `json:"producer"`
	ReleaseDate  string   `json:"release_date"`
	Species      []string `json:"species"`
	Starships    []string `json:"starships"`
	Vehicles     []string `json:"vehicles"`
	Characters   []string `json:"characters"`
	Planets      []string `json:"planets"`
	URL          string   `json:"url"`
}

type listMoviesQuery struct {
	Title       string `form:"title"`
	EpisodeID   *int   `form:"episode_id"`
	Director    string `form:"director"`
	Producer    string `form:"producer"`
	ReleaseDate string `form:"release_date"`
}

func (h *httpHandler) create(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), NewMovie{
		Title:        req.Title,
		EpisodeID:    req.EpisodeID,
		OpeningCrawl: req.OpeningCrawl,
		Director:     req.Director,
		Producer:     req.Producer,
		ReleaseDate:  req.ReleaseDate,
		Species:      req.Species,
		Starships:    req.Starships,
		Vehicles:     req.Vehicles,
		Characters:   req.Characters,
		Planets:      req.Planets,
		URL:          req.URL,
	})
	if err != nil {
		writeError(c, err, "failed to create movie")
		return
	}

	c.JSON(http.StatusOK, created)
}

func (h *httpHandler) list(c *gin.Context) {
	var query listMoviesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	movies, err := h.service.List(c.Request.Context(), Filter(query))
	if err != nil {
		writeError(c, err, "failed to list movies")
		return
	}

	c.JSON(http.StatusOK, movies)
}

func (h *httpHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "movie not found"})
			return
		}
		writeError(c, err, "failed to fetch movie")
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *httpHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var changes Changes
	if err := c.ShouldBindJSON(&changes); err != nil {
		httpx.BadRequest(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, changes)
	if err != nil {
		writeError(c, err, "failed to update movie")
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
		writeError(c, err, "failed to delete movie")
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
	case errors.Is(err, ErrMovieExists):
		httpx.Error(c, http.StatusConflict, "Movie already exists")
	case errors.Is(err, ErrMovieNotFound):
		httpx.Error(c, http.StatusNotFound, "Movie not found")
	case errors.Is(err, ErrInvalidMovie):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(c).Error(fallback, zap.Error(err))
		httpx.Error(c, http.StatusInternalServerError, fallback)
	}
}
