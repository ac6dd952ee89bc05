package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cadence/internal/auth"
	"cadence/internal/service"
	"cadence/internal/store"
)

type homeData struct {
	Connected bool
	LastSync  string
}

func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()

	connected, err := h.deps.Tokens.Connected(ctx)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	data := homeData{Connected: connected}

	last, err := h.deps.Mirror.LastSync(ctx)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	if !last.IsZero() {
		data.LastSync = last.Local().Format("2006-01-02 15:04")
	}

	h.render(c, http.StatusOK, "home", page{Title: "Cadence", Active: "home", Data: data})
}

// Connect starts the OAuth flow with a fresh state cookie
func (h *Handler) Connect(c *gin.Context) {
	state, err := auth.NewState()
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.StateCookie, state, int(auth.StateTTL.Seconds()), "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, auth.AuthCodeURL(h.deps.OAuth, state))
}

type callbackData struct {
	Activities []store.ActivitySummary
	SyncFailed bool
}

// Callback exchanges the code, then syncs the snapshot the coach reads
func (h *Handler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		plain(c, http.StatusBadRequest, "No code returned from Strava")
		return
	}

	cookie, _ := c.Cookie(auth.StateCookie)
	if !auth.CheckState(cookie, c.Query("state")) {
		plain(c, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	c.SetCookie(auth.StateCookie, "", -1, "/", "", h.secureCookies, true)

	ctx := c.Request.Context()
	if _, err := h.deps.Tokens.Exchange(ctx, code); err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}

	data := callbackData{}
	if _, err := h.deps.Mirror.Sync(ctx, service.SnapshotSize); err != nil {
		h.log.Warn("Initial sync failed", "error", err)
		data.SyncFailed = true
	}
	recent, err := h.deps.Mirror.Recent(ctx, service.SnapshotSize)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	data.Activities = recent

	h.render(c, http.StatusOK, "connected", page{Title: "Connected", Active: "home", Data: data})
}
