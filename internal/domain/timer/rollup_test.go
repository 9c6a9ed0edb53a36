package timer

import (
	"testing"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationSeconds(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	d, err := DurationSeconds(start, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1800), d)

	d, err = DurationSeconds(start, start.Add(1999*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int64(1), d)

	_, err = DurationSeconds(start, start.Add(-time.Second))
	assert.ErrorIs(t, err, ErrNegativeDuration)
}

func TestActualMinutes_FloorsTotal(t *testing.T) {
	assert.Equal(t, 0, ActualMinutes(nil))
	assert.Equal(t, 0, ActualMinutes([]int64{59}))
	assert.Equal(t, 1, ActualMinutes([]int64{30, 30}))
	assert.Equal(t, 2, ActualMinutes([]int64{61, 61}))

	durations := []int64{1800, 95, 3601}
	assert.Equal(t, ActualMinutes(durations), ActualMinutes(durations))
}

func TestSummarize(t *testing.T) {
	taskID := uuid.New()
	now := time.Now().UTC()
	open := TimeEntry{ID: uuid.New(), TaskID: taskID, StartTime: now}
	closed := []TimeEntry{
		{ID: uuid.New(), TaskID: taskID, StartTime: now, EndTime: &now, Duration: testutil.Ptr(int64(600))},
		{ID: uuid.New(), TaskID: taskID, StartTime: now, EndTime: &now, Duration: testutil.Ptr(int64(130))},
	}

	summary := Summarize(append([]TimeEntry{open}, closed...))
	assert.Equal(t, taskID, summary.TaskID)
	assert.Equal(t, int64(730), summary.TotalSeconds)
	assert.Equal(t, 12, summary.ActualMinutes)
	assert.Equal(t, 2, summary.ClosedEntries)
	require.NotNil(t, summary.ActiveEntry)
	assert.Equal(t, open.ID, summary.ActiveEntry.ID)

	empty := Summarize(nil)
	assert.Nil(t, empty.ActiveEntry)
	assert.Zero(t, empty.TotalSeconds)
}
