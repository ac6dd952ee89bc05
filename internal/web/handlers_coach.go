package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cadence/internal/service"
	"cadence/internal/store"
)

type coachData struct {
	Date   string
	Plan   store.Plan
	Source service.PlanSource
}

// Coach shows today's plan, generating it on the first visit of the day
func (h *Handler) Coach(c *gin.Context) {
	date := h.deps.Coach.Today()
	plan, source, err := h.deps.Coach.PlanFor(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err, showConnectLink)
		return
	}
	h.render(c, http.StatusOK, "coach", page{
		Title:  "Coach",
		Active: "coach",
		Data:   coachData{Date: date, Plan: plan, Source: source},
	})
}

func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.deps.Profiles.Get(c.Request.Context())
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	h.render(c, http.StatusOK, "profile", page{Title: "Profile", Active: "profile", Data: profile})
}

// SaveProfile applies the submitted fields and leaves the rest alone
func (h *Handler) SaveProfile(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		plain(c, http.StatusBadRequest, "Invalid form")
		return
	}
	if _, err := h.deps.Profiles.ApplyForm(c.Request.Context(), c.Request.PostForm); err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *Handler) ChatPage(c *gin.Context) {
	history, err := h.deps.Chat.History(c.Request.Context())
	if err != nil {
		h.fail(c, err, redirectToConnect)
		return
	}
	h.render(c, http.StatusOK, "chat", page{Title: "Chat", Active: "chat", Data: history})
}

// ChatSend posts one message. When the coach cannot answer, the page is
// shown again with the unanswered turn and a notice.
func (h *Handler) ChatSend(c *gin.Context) {
	ctx := c.Request.Context()
	history, err := h.deps.Chat.Send(ctx, c.PostForm("message"))
	if err != nil {
		h.log.Error("Chat failed", "request_id", c.GetString(requestIDKey), "error", err)
		history, herr := h.deps.Chat.History(ctx)
		if herr != nil {
			h.fail(c, herr, redirectToConnect)
			return
		}
		h.render(c, http.StatusBadGateway, "chat", page{
			Title:  "Chat",
			Active: "chat",
			Flash:  "Cadence could not answer right now. Your message was saved.",
			Data:   history,
		})
		return
	}
	h.render(c, http.StatusOK, "chat", page{Title: "Chat", Active: "chat", Data: history})
}
