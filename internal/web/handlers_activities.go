package web

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"

	"cadence/internal/route"
	"cadence/internal/service"
	"cadence/internal/sticker"
)

func (h *Handler) Activities(c *gin.Context) {
	result, err := h.deps.Mirror.ListPage(c.Request.Context(), queryInt(c, "page"))
	if err != nil {
		h.fail(c, err, showConnectLink)
		return
	}
	h.render(c, http.StatusOK, "activities", page{Title: "Activities", Active: "activities", Data: result})
}

func (h *Handler) ActivityDetail(c *gin.Context) {
	id, ok := activityID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}
	detail, err := h.deps.Mirror.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, showConnectLink)
		return
	}
	h.render(c, http.StatusOK, "activity_detail", page{Title: detail.Name, Active: "activities", Data: detail})
}

// Sticker renders the stats overlay PNG for one activity
func (h *Handler) Sticker(c *gin.Context) {
	id, ok := activityID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}
	detail, err := h.deps.Mirror.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}

	stats := sticker.Stats{
		DistanceKm:    math.Round(detail.DistanceKm*100) / 100,
		MovingTimeMin: math.Round(detail.MovingTimeMin),
		AvgHR:         detail.AvgHR,
	}
	var buf bytes.Buffer
	if err := h.deps.Sticker.RenderPNG(&buf, stats, detail.Polyline); err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// RouteGPX exports the recorded route as a GPX track
func (h *Handler) RouteGPX(c *gin.Context) {
	id, ok := activityID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}
	detail, err := h.deps.Mirror.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	if detail.Polyline == "" {
		plain(c, http.StatusNotFound, "No route recorded for this activity")
		return
	}

	points, err := route.Decode(detail.Polyline)
	if err != nil {
		h.fail(c, fmt.Errorf("decoding route of %d: %w", id, err), redirectToConnect)
		return
	}
	start, _ := time.Parse(time.RFC3339, detail.StartDate)
	data, err := route.GPX(detail.Name, detail.Type, start, points)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="activity-%d.gpx"`, id))
	c.Data(http.StatusOK, "application/gpx+xml", data)
}

// csvRow is one line of the snapshot export
type csvRow struct {
	ID            int64  `csv:"id"`
	Name          string `csv:"name"`
	Type          string `csv:"type"`
	StartDate     string `csv:"start_date"`
	DistanceKm    string `csv:"distance_km"`
	MovingTimeMin string `csv:"moving_time_min"`
	AvgHR         string `csv:"avg_hr"`
	AvgCadence    string `csv:"avg_cadence"`
	AvgPower      string `csv:"avg_power"`
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ActivitiesCSV exports the local snapshot
func (h *Handler) ActivitiesCSV(c *gin.Context) {
	activities, err := h.deps.Mirror.Recent(c.Request.Context(), 0)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}

	rows := make([]csvRow, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, csvRow{
			ID:            a.ID,
			Name:          a.Name,
			Type:          a.Type,
			StartDate:     a.StartDate,
			DistanceKm:    strconv.FormatFloat(a.DistanceKm, 'f', 2, 64),
			MovingTimeMin: strconv.FormatFloat(a.MovingTimeMin, 'f', 1, 64),
			AvgHR:         optional(a.AvgHR),
			AvgCadence:    optional(a.AvgCadence),
			AvgPower:      optional(a.AvgPower),
		})
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		h.fail(c, fmt.Errorf("encoding csv: %w", err), redirectToConnect)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="activities.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Sync refreshes the local snapshot and returns home
func (h *Handler) Sync(c *gin.Context) {
	if _, err := h.deps.Mirror.Sync(c.Request.Context(), service.SnapshotSize); err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) Share(c *gin.Context) {
	id, ok := activityID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}
	preview, err := h.deps.Mirror.ShareImages(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	h.render(c, http.StatusOK, "share", page{Title: "Share " + preview.Name, Active: "aura", Data: preview})
}

func (h *Handler) Aura(c *gin.Context) {
	cards, err := h.deps.Mirror.Aura(c.Request.Context())
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	h.render(c, http.StatusOK, "aura", page{Title: "Aura", Active: "aura", Data: cards})
}

func (h *Handler) AuraPreview(c *gin.Context) {
	id, ok := activityID(c)
	if !ok {
		h.renderNotFound(c)
		return
	}
	preview, err := h.deps.Mirror.Preview(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, showConnectLink)
		return
	}
	h.render(c, http.StatusOK, "aura_preview", page{Title: preview.Name, Active: "aura", Data: preview})
}
