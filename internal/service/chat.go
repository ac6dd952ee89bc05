package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cadence/internal/logger"
	"cadence/internal/openai"
	"cadence/internal/store"
)

const chatSystemPrompt = "You are Cadence, an AI triathlon coach. Analyze athlete data and answer clearly with safe, supportive guidance."

// Chat is the free-form conversation with the coach
type Chat struct {
	store  *store.Store
	mirror *Mirror
	llm    openai.Completer
	log    *logger.Logger
}

func NewChat(s *store.Store, mirror *Mirror, llm openai.Completer, log *logger.Logger) *Chat {
	if log == nil {
		log = logger.Nop()
	}
	return &Chat{store: s, mirror: mirror, llm: llm, log: log}
}

// History returns the turns shown on the chat page
func (c *Chat) History(ctx context.Context) ([]store.ChatMessage, error) {
	history, err := c.store.GetTranscript(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return store.LastMessages(history, ChatHistoryShown), nil
}

// Send records message, asks the coach and records the reply. The user
// turn is persisted before the completion call, so a failed call leaves an
// unanswered turn in the transcript. An empty message changes nothing.
func (c *Chat) Send(ctx context.Context, message string) ([]store.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return c.History(ctx)
	}

	history, err := c.store.AppendMessage(ctx, store.ChatMessage{Role: store.RoleUser, Content: message})
	if err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}

	athleteContext, err := c.BuildContext(ctx)
	if err != nil {
		return nil, err
	}

	messages := []openai.Message{
		{Role: openai.RoleSystem, Content: chatSystemPrompt},
		{Role: openai.RoleUser, Content: athleteContext},
	}
	for _, m := range store.LastMessages(history, ChatContextTurns) {
		messages = append(messages, openai.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := c.llm.Complete(ctx, openai.Request{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("asking coach: %w", err)
	}

	history, err = c.store.AppendMessage(ctx, store.ChatMessage{Role: store.RoleAssistant, Content: reply})
	if err != nil {
		return nil, fmt.Errorf("saving reply: %w", err)
	}

	c.log.Info("chat reply", "transcript_len", len(history))
	return store.LastMessages(history, ChatHistoryShown), nil
}

// BuildContext assembles profile, stored plans and recent activities into
// the context message sent ahead of the transcript
func (c *Chat) BuildContext(ctx context.Context) (string, error) {
	var b strings.Builder

	p, exists, err := c.store.GetProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("reading profile: %w", err)
	}
	if exists {
		data, err := json.Marshal(p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "Athlete profile: %s\n", data)
	}

	hasPlans, err := c.store.HasPlans(ctx)
	if err != nil {
		return "", fmt.Errorf("reading plans: %w", err)
	}
	if hasPlans {
		plans, err := c.store.GetPlans(ctx)
		if err != nil {
			return "", fmt.Errorf("reading plans: %w", err)
		}
		data, err := json.Marshal(plans)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "Current plan: %s\n", data)
	}

	recent, err := c.mirror.Recent(ctx, RecentContextActivities)
	if err != nil {
		return "", err
	}
	if len(recent) > 0 {
		b.WriteString("Recent activities (last 10):\n")
		for _, a := range recent {
			fmt.Fprintf(&b, "- %s %s | %.1f km, %.0f min, HR %s, Cadence %s\n",
				a.Type, a.Name, a.DistanceKm, a.MovingTimeMin, orUnknown(a.AvgHR), orUnknown(a.AvgCadence))
		}
	}

	return b.String(), nil
}

func orUnknown(v *float64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
