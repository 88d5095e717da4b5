package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Update(t *testing.T) {
	ctx, tracker := WithNewTracker(context.Background(), "run-1", "goal", nil)

	UpdateCtx(ctx, Delta{Total: 3, Pending: 3})
	UpdateCtx(ctx, Delta{Pending: -1, Running: 1})
	UpdateCtx(ctx, Delta{Running: -1, Passed: 1, Proposals: 3, Fetches: 1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, 3, snapshot.TotalSubtasks)
	assert.Equal(t, 2, snapshot.PendingSubtasks)
	assert.Equal(t, 0, snapshot.RunningSubtasks)
	assert.Equal(t, 1, snapshot.PassedSubtasks)
	assert.Equal(t, 3, snapshot.Proposals)
	assert.Equal(t, 1, snapshot.Fetches)
}

func TestProgress_OnChange(t *testing.T) {
	var seen []int
	_, tracker := WithNewTracker(context.Background(), "run-1", "goal", func(p Progress) {
		seen = append(seen, p.PassedSubtasks)
	})
	tracker.Update(Delta{Passed: 1})
	tracker.Update(Delta{Passed: 1})
	require.Equal(t, []int{1, 2}, seen)
}

func TestProgress_MissingTracker(t *testing.T) {
	// no tracker in context – helpers are no-ops
	UpdateCtx(context.Background(), Delta{Passed: 1})
	_, ok := GetSnapshot(context.Background())
	assert.False(t, ok)
}
