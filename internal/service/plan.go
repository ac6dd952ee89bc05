package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cadence/internal/analysis"
	"cadence/internal/logger"
	"cadence/internal/openai"
	"cadence/internal/store"
)

var (
	// ErrNoSnapshot means no mirrored activities exist to plan from
	ErrNoSnapshot = errors.New("no mirrored activities")
	// ErrInvalidPlan means the completion did not match the plan shape
	ErrInvalidPlan = errors.New("invalid plan from coach")
)

const planSystemPrompt = "You are Cadence, an AI triathlon coach. Output ONLY valid JSON with keys: sport, duration_min, intensity, rationale."

// PlanSource says whether a plan was read back or generated just now
type PlanSource string

const (
	SourceSaved PlanSource = "Saved Plan"
	SourceNew   PlanSource = "New Plan"
)

// Coach owns the date-keyed plan mapping. A date's plan is generated at
// most once and never regenerated.
type Coach struct {
	store *store.Store
	llm   openai.Completer
	zones analysis.HRZones
	log   *logger.Logger
	now   func() time.Time
}

func NewCoach(s *store.Store, llm openai.Completer, zones analysis.HRZones, log *logger.Logger) *Coach {
	if log == nil {
		log = logger.Nop()
	}
	return &Coach{store: s, llm: llm, zones: zones, log: log, now: time.Now}
}

// Today returns the plan key for the current local date
func (c *Coach) Today() string {
	return c.now().Format("2006-01-02")
}

// PlanFor returns the stored plan for date, generating and storing it on
// the first visit. The completion call runs outside the store update, so
// two racing first visits may both call it; the first write wins and the
// loser returns the stored plan.
func (c *Coach) PlanFor(ctx context.Context, date string) (store.Plan, PlanSource, error) {
	plan, ok, err := c.store.GetPlan(ctx, date)
	if err != nil {
		return store.Plan{}, "", fmt.Errorf("reading plans: %w", err)
	}
	if ok {
		return plan, SourceSaved, nil
	}

	generated, err := c.generate(ctx)
	if err != nil {
		return store.Plan{}, "", err
	}

	stored, inserted, err := c.store.PutPlanIfAbsent(ctx, date, generated)
	if err != nil {
		return store.Plan{}, "", fmt.Errorf("saving plan: %w", err)
	}
	if !inserted {
		return stored, SourceSaved, nil
	}

	c.log.Info("training plan generated", "date", date, "sport", stored.Sport, "duration_min", stored.DurationMin)
	return stored, SourceNew, nil
}

func (c *Coach) generate(ctx context.Context) (store.Plan, error) {
	activities, err := c.store.GetSnapshot(ctx)
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(activities) == 0) {
		return store.Plan{}, ErrNoSnapshot
	}
	if err != nil {
		return store.Plan{}, fmt.Errorf("reading snapshot: %w", err)
	}

	profileText, err := c.profileText(ctx)
	if err != nil {
		return store.Plan{}, err
	}

	summary := WorkoutSummary(activities)
	if m, ok := analysis.CurrentFitness(activities, c.zones, c.now()); ok {
		summary += m.Describe() + "\n"
	}
	if hrss, ok := analysis.WeeklyHRSS(activities, c.zones, c.now()); ok {
		summary += fmt.Sprintf("Heart rate stress, last 7 days: %.0f HRSS (threshold HR %.0f bpm)\n", hrss, c.zones.ThresholdHR)
	}

	reply, err := c.llm.Complete(ctx, openai.Request{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: planSystemPrompt},
			{Role: openai.RoleUser, Content: fmt.Sprintf("%s\nHere are my last workouts:\n%s\n\nGenerate tomorrow's training plan.", profileText, summary)},
		},
		JSONMode: true,
	})
	if err != nil {
		return store.Plan{}, fmt.Errorf("requesting plan: %w", err)
	}

	return ParsePlan(reply)
}

// profileText is empty until the athlete has saved a profile
func (c *Coach) profileText(ctx context.Context) (string, error) {
	p, exists, err := c.store.GetProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("reading profile: %w", err)
	}
	if !exists {
		return "", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return "Athlete profile: " + string(data), nil
}

// WorkoutSummary renders one line per mirrored activity for the plan prompt
func WorkoutSummary(activities []store.ActivitySummary) string {
	var b strings.Builder
	for _, a := range activities {
		fmt.Fprintf(&b, "%s – %s – %.1f km – %.0f min", a.Type, a.Name, a.DistanceKm, a.MovingTimeMin)
		if present(a.AvgHR) {
			fmt.Fprintf(&b, " – HR %.0f bpm", *a.AvgHR)
		}
		if present(a.AvgCadence) {
			fmt.Fprintf(&b, " – Cadence %.0f", *a.AvgCadence)
		}
		if present(a.AvgPower) {
			fmt.Fprintf(&b, " – Power %.0f W", *a.AvgPower)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// present treats zero like a missing reading
func present(v *float64) bool {
	return v != nil && *v != 0
}

// ParsePlan decodes a completion into a Plan. All four keys are required,
// the text fields must be non-empty strings and duration_min a positive
// whole number (a numeric string is accepted).
func ParsePlan(reply string) (store.Plan, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &raw); err != nil {
		return store.Plan{}, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidPlan, err)
	}

	var plan store.Plan
	fields := []struct {
		key string
		dst *string
	}{
		{"sport", &plan.Sport},
		{"intensity", &plan.Intensity},
		{"rationale", &plan.Rationale},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			return store.Plan{}, fmt.Errorf("%w: missing %q", ErrInvalidPlan, f.key)
		}
		if err := json.Unmarshal(v, f.dst); err != nil || strings.TrimSpace(*f.dst) == "" {
			return store.Plan{}, fmt.Errorf("%w: %q must be a non-empty string", ErrInvalidPlan, f.key)
		}
	}

	v, ok := raw["duration_min"]
	if !ok {
		return store.Plan{}, fmt.Errorf("%w: missing %q", ErrInvalidPlan, "duration_min")
	}
	minutes, err := parseMinutes(v)
	if err != nil {
		return store.Plan{}, fmt.Errorf("%w: duration_min: %v", ErrInvalidPlan, err)
	}
	plan.DurationMin = minutes

	return plan, nil
}

func parseMinutes(v json.RawMessage) (int, error) {
	f, err := store.DecodeMinutes(v)
	if err != nil {
		return 0, err
	}
	if f <= 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("must be a positive whole number, got %v", f)
	}
	return int(f), nil
}
