package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
)

type fakeSource struct {
	assignments map[int64]task.AssignmentStatus
	err         error
}

func (f *fakeSource) AssignmentStatus(_ context.Context, _ string, taskID int64) (*task.AssignmentStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	status, found := f.assignments[taskID]
	if !found {
		return nil, nil
	}
	return &status, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 4, 1, hour, minute, 0, 0, time.UTC)
}

func entry(id int64, t worklog.EntryType, ts time.Time, device int64, taskID ...int64) worklog.StoredEntry {
	e := worklog.StoredEntry{
		ID:       id,
		DeviceID: device,
		Entry: worklog.Entry{
			Type:      t,
			Timestamp: ts,
			Login:     "wwisniew",
		},
	}
	if len(taskID) > 0 {
		id := taskID[0]
		e.TaskID = &id
	}
	return e
}

func runBatch(t *testing.T, source *fakeSource, entries []worklog.StoredEntry) Result {
	t.Helper()
	p := NewProcessor("wwisniew", source, testLogger())
	for _, e := range entries {
		require.NoError(t, p.Process(context.Background(), e))
	}
	return p.Result()
}

func TestFullDaySession(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{
		1: {TimeSpent: 10 * time.Minute},
	}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryLogin, at(9, 0), 5),
		entry(2, worklog.EntryTaskStart, at(9, 1), 5, 1),
		entry(3, worklog.EntryTaskPause, at(9, 31), 5, 1),
		entry(4, worklog.EntryLogout, at(9, 32), 5),
	})

	assert.ElementsMatch(t, []int64{2, 3, 1, 4}, result.ProcessedIDs)
	require.Contains(t, result.Assignments, int64(1))
	assert.Equal(t, 40*time.Minute, result.Assignments[1].TimeSpent)
	assert.False(t, result.Assignments[1].Finished)
	assert.Empty(t, result.Anomalies)
}

func TestTaskFinishSetsFinishedFlag(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{1: {}}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryTaskStart, at(10, 0), 5, 1),
		entry(2, worklog.EntryTaskFinish, at(10, 45), 5, 1),
	})

	require.Contains(t, result.Assignments, int64(1))
	assert.Equal(t, 45*time.Minute, result.Assignments[1].TimeSpent)
	assert.True(t, result.Assignments[1].Finished)
}

func TestDoubleStartDropsStaleStart(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{1: {}}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryTaskStart, at(9, 0), 5, 1),
		entry(2, worklog.EntryTaskStart, at(9, 10), 5, 1),
	})

	// The first start is discarded, the second stays open for the next
	// batch; no time has been recorded yet.
	assert.Equal(t, []int64{1}, result.ProcessedIDs)
	assert.Empty(t, result.Assignments)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, int64(2), result.Anomalies[0].EntryID)
}

func TestStopWithoutStart(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{1: {TimeSpent: time.Hour}}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryTaskPause, at(9, 0), 5, 1),
	})

	assert.Equal(t, []int64{1}, result.ProcessedIDs)
	assert.Empty(t, result.Assignments, "no delta applied outside a matched pair")
	require.Len(t, result.Anomalies, 1)
}

func TestOutOfOrderTimestampDroppedRegardlessOfPosition(t *testing.T) {
	base := []worklog.StoredEntry{
		entry(1, worklog.EntryLogin, at(9, 0), 5),
		entry(2, worklog.EntryTaskStart, at(9, 1), 5, 1),
		entry(3, worklog.EntryTaskPause, at(9, 31), 5, 1),
		entry(4, worklog.EntryLogout, at(9, 32), 5),
	}
	stale := entry(99, worklog.EntryTaskStart, at(8, 0), 5, 2)

	for pos := 1; pos <= len(base); pos++ {
		source := &fakeSource{assignments: map[int64]task.AssignmentStatus{
			1: {}, 2: {},
		}}
		batch := make([]worklog.StoredEntry, 0, len(base)+1)
		batch = append(batch, base[:pos]...)
		batch = append(batch, stale)
		batch = append(batch, base[pos:]...)

		result := runBatch(t, source, batch)

		assert.Contains(t, result.ProcessedIDs, int64(99), "position %d", pos)
		require.Contains(t, result.Assignments, int64(1), "position %d", pos)
		assert.Equal(t, 30*time.Minute, result.Assignments[1].TimeSpent, "position %d", pos)
		assert.NotContains(t, result.Assignments, int64(2), "position %d", pos)
		require.Len(t, result.Anomalies, 1, "position %d", pos)
	}
}

func TestLoginBeforeLogoutDropsStaleLogin(t *testing.T) {
	source := &fakeSource{}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryLogin, at(9, 0), 5),
		entry(2, worklog.EntryLogin, at(9, 30), 5),
		entry(3, worklog.EntryLogout, at(17, 0), 5),
	})

	// First login discarded, second matched against the logout.
	assert.ElementsMatch(t, []int64{1, 2, 3}, result.ProcessedIDs)
	require.Len(t, result.Anomalies, 1)
}

func TestLogoutWithoutLogin(t *testing.T) {
	source := &fakeSource{}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryLogout, at(17, 0), 5),
	})

	assert.Equal(t, []int64{1}, result.ProcessedIDs)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, "logout before login", result.Anomalies[0].Reason)
}

func TestCrossDeviceLogoutStillPairs(t *testing.T) {
	source := &fakeSource{}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryLogin, at(9, 0), 5),
		entry(2, worklog.EntryLogout, at(17, 0), 6),
	})

	assert.ElementsMatch(t, []int64{1, 2}, result.ProcessedIDs)
	require.Len(t, result.Anomalies, 1)
}

func TestCrossDeviceStopStillAppliesDelta(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{1: {}}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryTaskStart, at(9, 0), 5, 1),
		entry(2, worklog.EntryTaskPause, at(9, 20), 6, 1),
	})

	require.Contains(t, result.Assignments, int64(1))
	assert.Equal(t, 20*time.Minute, result.Assignments[1].TimeSpent)
	require.Len(t, result.Anomalies, 1)
}

func TestNeverAssignedTaskRejected(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryTaskStart, at(9, 0), 5, 7),
		entry(2, worklog.EntryTaskPause, at(9, 30), 5, 7),
	})

	assert.ElementsMatch(t, []int64{1, 2}, result.ProcessedIDs)
	assert.Empty(t, result.Assignments)
	assert.Len(t, result.Anomalies, 2)
}

func TestAlreadyFinishedAssignmentStillApplies(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{
		1: {TimeSpent: time.Hour, Finished: true},
	}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryTaskStart, at(9, 0), 5, 1),
		entry(2, worklog.EntryTaskPause, at(9, 30), 5, 1),
	})

	require.Contains(t, result.Assignments, int64(1))
	assert.Equal(t, 90*time.Minute, result.Assignments[1].TimeSpent)
	assert.True(t, result.Assignments[1].Finished)
	assert.NotEmpty(t, result.Anomalies)
}

func TestWrongEmployeeRejected(t *testing.T) {
	source := &fakeSource{}
	other := entry(1, worklog.EntryLogin, at(9, 0), 5)
	other.Login = "mlukashe"
	result := runBatch(t, source, []worklog.StoredEntry{other})

	assert.Equal(t, []int64{1}, result.ProcessedIDs)
	require.Len(t, result.Anomalies, 1)
}

func TestTaskEntryWithoutTaskIDRejected(t *testing.T) {
	source := &fakeSource{}
	e := entry(1, worklog.EntryTaskStart, at(9, 0), 5)
	result := runBatch(t, source, []worklog.StoredEntry{e})

	assert.Equal(t, []int64{1}, result.ProcessedIDs)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, "task id missing", result.Anomalies[0].Reason)
}

func TestLoginEntryWithTaskIDRejected(t *testing.T) {
	source := &fakeSource{}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryLogin, at(9, 0), 5, 3),
	})

	assert.Equal(t, []int64{1}, result.ProcessedIDs)
	require.Len(t, result.Anomalies, 1)
}

func TestUnmatchedOpenEntriesStayUnprocessed(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{1: {}}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryLogin, at(9, 0), 5),
		entry(2, worklog.EntryTaskStart, at(9, 1), 5, 1),
	})

	assert.Empty(t, result.ProcessedIDs)
	assert.Empty(t, result.Assignments)
	assert.Empty(t, result.Anomalies)
}

func TestStoreFailurePropagates(t *testing.T) {
	source := &fakeSource{err: errors.New("connection reset")}
	p := NewProcessor("wwisniew", source, testLogger())
	err := p.Process(context.Background(), entry(1, worklog.EntryTaskStart, at(9, 0), 5, 1))
	assert.Error(t, err)
}

func TestEqualTimestampsAccepted(t *testing.T) {
	source := &fakeSource{assignments: map[int64]task.AssignmentStatus{1: {}}}
	result := runBatch(t, source, []worklog.StoredEntry{
		entry(1, worklog.EntryTaskStart, at(9, 0), 5, 1),
		entry(2, worklog.EntryTaskPause, at(9, 0), 5, 1),
	})

	require.Contains(t, result.Assignments, int64(1))
	assert.Equal(t, time.Duration(0), result.Assignments[1].TimeSpent)
	assert.Empty(t, result.Anomalies)
}
