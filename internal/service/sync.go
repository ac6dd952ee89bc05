package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cadence/internal/store"
)

// SyncResult contains the results of a snapshot sync
type SyncResult struct {
	ActivitiesFetched int
	WithHeartRate     int
	SyncedAt          time.Time
}

// Sync mirrors the n most recent activities into the local snapshot,
// replacing whatever was there, and records when it happened
func (m *Mirror) Sync(ctx context.Context, n int) (*SyncResult, error) {
	if n <= 0 {
		n = SnapshotSize
	}

	activities, err := m.api.GetActivities(ctx, 1, n)
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}

	result := &SyncResult{SyncedAt: m.now().UTC()}
	summaries := make([]store.ActivitySummary, 0, len(activities))
	for _, a := range activities {
		summaries = append(summaries, Summarize(a))
		if a.AverageHeartrate != nil {
			result.WithHeartRate++
		}
	}
	result.ActivitiesFetched = len(summaries)

	if err := m.store.SaveSnapshot(ctx, summaries); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	// Sync state is informational; a failure here does not undo the snapshot
	if err := m.store.SetSyncState(ctx, SyncStateLastSync, result.SyncedAt.Format(time.RFC3339)); err != nil {
		m.log.Warn("recording sync time failed", "error", err)
	}
	if err := m.store.SetSyncState(ctx, SyncStateLastCount, strconv.Itoa(result.ActivitiesFetched)); err != nil {
		m.log.Warn("recording sync count failed", "error", err)
	}

	m.log.Info("activity snapshot synced",
		"activities", result.ActivitiesFetched,
		"with_hr", result.WithHeartRate,
	)
	return result, nil
}

// LastSync returns when the snapshot was last written, zero if never
func (m *Mirror) LastSync(ctx context.Context) (time.Time, error) {
	v, err := m.store.GetSyncState(ctx, SyncStateLastSync)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}
