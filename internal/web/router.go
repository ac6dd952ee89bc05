package web

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"cadence/internal/logger"
)

func NewRouter(h *Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(Recovery(log, h.renderInternalError))

	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	r.GET("/healthz", h.Health)
	r.GET("/", h.Home)

	// OAuth
	r.GET("/connect", h.Connect)
	r.GET("/callback", h.Callback)

	// Activities
	r.GET("/activities", h.Activities)
	r.GET("/activities.csv", h.ActivitiesCSV)
	r.GET("/activities/:id", h.ActivityDetail)
	r.GET("/activities/:id/sticker.png", h.Sticker)
	r.GET("/activities/:id/route.gpx", h.RouteGPX)
	r.POST("/sync", h.Sync)
	r.GET("/share/:id", h.Share)
	r.GET("/aura", h.Aura)
	r.GET("/aura/:id", h.AuraPreview)

	// Coaching
	r.GET("/coach", h.Coach)
	r.GET("/profile", h.Profile)
	r.POST("/profile", h.SaveProfile)
	r.GET("/chat", h.ChatPage)
	r.POST("/chat", h.ChatSend)

	// Schedule
	r.GET("/schedule", h.Schedule)
	r.GET("/calendar.ics", h.CalendarICS)
	r.POST("/calendar/google", h.CalendarPush)

	return r
}
