package service

import (
	"context"
	"fmt"
	"sync"

	"cadence/internal/openai"
	"cadence/internal/strava"
)

// fakeAPI serves canned activities, details and photos
type fakeAPI struct {
	mu         sync.Mutex
	activities []strava.Activity
	details    map[int64]*strava.DetailedActivity
	photos     map[int64][]strava.Photo
	photoCalls int
	err        error
}

func (f *fakeAPI) GetActivities(ctx context.Context, page, perPage int) ([]strava.Activity, error) {
	if f.err != nil {
		return nil, f.err
	}
	start := (page - 1) * perPage
	if start >= len(f.activities) {
		return []strava.Activity{}, nil
	}
	end := start + perPage
	if end > len(f.activities) {
		end = len(f.activities)
	}
	return f.activities[start:end], nil
}

func (f *fakeAPI) GetActivity(ctx context.Context, id int64) (*strava.DetailedActivity, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &strava.APIError{StatusCode: 404, Body: "Record Not Found"}
	}
	return d, nil
}

func (f *fakeAPI) GetActivityPhotos(ctx context.Context, id int64, size int) ([]strava.Photo, error) {
	f.mu.Lock()
	f.photoCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.photos[id], nil
}

// fakeLLM records requests and replies with canned text
type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []openai.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req openai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func floatPtr(v float64) *float64 { return &v }

func makeActivities(n int) []strava.Activity {
	out := make([]strava.Activity, n)
	for i := range out {
		out[i] = strava.Activity{
			ID:         int64(n - i),
			Name:       fmt.Sprintf("Activity %d", n-i),
			Type:       "Run",
			Distance:   1000,
			MovingTime: 120,
		}
	}
	return out
}
