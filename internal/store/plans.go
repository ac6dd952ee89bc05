package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// GetPlans returns every stored plan. A missing document is an empty map.
func (s *Store) GetPlans(ctx context.Context) (Plans, error) {
	plans := Plans{}
	err := s.getJSON(ctx, KeyPlans, &plans)
	if errors.Is(err, ErrNotFound) {
		return Plans{}, nil
	}
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// HasPlans reports whether the plan document exists at all
func (s *Store) HasPlans(ctx context.Context) (bool, error) {
	_, err := s.backend.Get(ctx, KeyPlans)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetPlan returns the plan for date and whether it exists
func (s *Store) GetPlan(ctx context.Context, date string) (Plan, bool, error) {
	plans, err := s.GetPlans(ctx)
	if err != nil {
		return Plan{}, false, err
	}
	p, ok := plans[date]
	return p, ok, nil
}

// PutPlanIfAbsent stores plan under date unless a plan for date already
// exists. It returns the plan that is stored afterwards and whether it is
// the one passed in.
func (s *Store) PutPlanIfAbsent(ctx context.Context, date string, plan Plan) (Plan, bool, error) {
	var stored Plan
	inserted := false
	err := updateJSON[Plans](ctx, s.backend, KeyPlans, nil, func(plans *Plans, exists bool) error {
		if *plans == nil {
			*plans = Plans{}
		}
		if existing, ok := (*plans)[date]; ok {
			stored = existing
			inserted = false
			return errSkipWrite
		}
		(*plans)[date] = plan
		stored = plan
		inserted = true
		return nil
	})
	if err != nil {
		return Plan{}, false, err
	}
	return stored, inserted, nil
}

// SortedDates returns the plan dates in ascending order
func (p Plans) SortedDates() []string {
	dates := make([]string, 0, len(p))
	for d := range p {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// UnmarshalJSON accepts duration_min as a number or a numeric string, the
// form older plan files were written in.
func (p *Plan) UnmarshalJSON(data []byte) error {
	type plain Plan
	var aux struct {
		plain
		DurationMin json.RawMessage `json:"duration_min"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Plan(aux.plain)
	if len(aux.DurationMin) == 0 || string(aux.DurationMin) == "null" {
		return nil
	}
	minutes, err := DecodeMinutes(aux.DurationMin)
	if err != nil {
		return fmt.Errorf("duration_min: %w", err)
	}
	p.DurationMin = int(math.Round(minutes))
	return nil
}

// DecodeMinutes reads a JSON number or a string holding one
func DecodeMinutes(v json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}
