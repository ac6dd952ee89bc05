package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cadence/internal/schedule"
)

func (h *Handler) Schedule(c *gin.Context) {
	plans, err := h.deps.Store.GetPlans(c.Request.Context())
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	ym := schedule.ParseYearMonth(queryInt(c, "year"), queryInt(c, "month"), h.now())
	month := schedule.BuildMonth(ym, plans)

	h.render(c, http.StatusOK, "schedule", page{
		Title:  fmt.Sprintf("%s %d", month.Name, month.Year),
		Active: "schedule",
		Data:   month,
	})
}

// CalendarICS exports every stored plan as an iCalendar feed
func (h *Handler) CalendarICS(c *gin.Context) {
	ctx := c.Request.Context()

	exists, err := h.deps.Store.HasPlans(ctx)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	if !exists {
		plain(c, http.StatusNotFound, "No plans found")
		return
	}
	plans, err := h.deps.Store.GetPlans(ctx)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}

	var buf bytes.Buffer
	if err := schedule.WriteICS(&buf, plans, h.now()); err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

type pushData struct {
	Result schedule.PushResult
}

// CalendarPush upserts every stored plan into the configured Google calendar
func (h *Handler) CalendarPush(c *gin.Context) {
	if h.deps.Calendar == nil {
		plain(c, http.StatusNotFound, "Google Calendar push is not configured")
		return
	}

	plans, err := h.deps.Store.GetPlans(c.Request.Context())
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}

	res, err := h.deps.Calendar.Push(c.Request.Context(), plans)
	p := page{Title: "Google Calendar", Active: "schedule", Data: pushData{Result: res}}
	status := http.StatusOK
	if err != nil {
		h.log.Error("Calendar push failed", "error", err, "failed", res.Failed)
		p.Flash = "Some plans could not be pushed to Google Calendar."
		status = http.StatusBadGateway
	}
	h.render(c, status, "pushed", p)
}
