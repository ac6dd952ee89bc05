package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cadence/internal/auth"
	"cadence/internal/logger"
	"cadence/internal/service"
	"cadence/internal/strava"
)

const (
	connectLink       = `<a href="/">Connect with Strava first</a>`
	noSnapshotMessage = `<p>No detailed activities found. Visit <a href="/activities">/activities</a> first.</p>`
	invalidPlanMsg    = `<p>The coach returned a plan that could not be read. Please try again.</p>`
	rateLimitedMsg    = `<p>Strava rate limit reached. Try again in a few minutes.</p>`
)

// Handler serves every page of the dashboard
type Handler struct {
	deps          Deps
	pages         *renderer
	log           *logger.Logger
	secureCookies bool
	now           func() time.Time
}

// authFallback picks what an unauthenticated request sees
type authFallback int

const (
	redirectToConnect authFallback = iota
	showConnectLink
)

// fail maps service errors onto responses
func (h *Handler) fail(c *gin.Context, err error, fallback authFallback) {
	var apiErr *strava.APIError
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		if fallback == showConnectLink {
			inline(c, http.StatusOK, connectLink)
			return
		}
		c.Redirect(http.StatusFound, "/connect")
	case errors.Is(err, service.ErrNoSnapshot):
		inline(c, http.StatusOK, noSnapshotMessage)
	case errors.Is(err, service.ErrInvalidPlan):
		h.log.Warn("Unusable plan from coach", "error", err)
		inline(c, http.StatusBadGateway, invalidPlanMsg)
	case errors.Is(err, strava.ErrRateLimited):
		inline(c, http.StatusServiceUnavailable, rateLimitedMsg)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		h.renderNotFound(c)
	default:
		h.log.Error("Request failed", "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "error", err)
		h.renderInternalError(c)
	}
}

func (h *Handler) renderNotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error", page{Title: "Not found", Data: "That page or activity does not exist."})
}

func (h *Handler) renderInternalError(c *gin.Context) {
	h.render(c, http.StatusInternalServerError, "error", page{Title: "Error", Data: "Something went wrong. Please try again."})
}

// render falls back to a plain 500 when the template itself fails
func (h *Handler) render(c *gin.Context, status int, name string, p page) {
	if err := h.pages.render(c, status, name, p); err != nil {
		h.log.Error("Template failed", "page", name, "error", err)
		plain(c, http.StatusInternalServerError, "internal server error")
	}
}

// activityID parses the :id path parameter
func activityID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query value, 0 when missing or malformed
func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
