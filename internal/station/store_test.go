package station

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreDeviceUUIDStable(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := openTestStore(t, dir)
	first, err := store.DeviceUUID(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := store.DeviceUUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, store.Close())
	reopened := openTestStore(t, dir)
	third, err := reopened.DeviceUUID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestStoreCurrentLogin(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	ctx := context.Background()

	login, err := store.CurrentLogin(ctx)
	require.NoError(t, err)
	assert.Empty(t, login)

	require.NoError(t, store.SetCurrentLogin(ctx, "alice"))
	login, err = store.CurrentLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", login)

	require.NoError(t, store.SetCurrentLogin(ctx, ""))
	login, err = store.CurrentLogin(ctx)
	require.NoError(t, err)
	assert.Empty(t, login)
}

func TestStoreReplaceTasks(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	ctx := context.Background()

	first := []task.AssignedTask{
		{Task: task.Task{ID: 7, Title: "Sort inbox", Description: "Oldest first\nSkip spam"}, SecondsSpent: 1800},
		{Task: task.Task{ID: 9, Title: "Inventory", Description: "Count the shelves"}, SecondsSpent: 0},
	}
	require.NoError(t, store.ReplaceTasks(ctx, first))

	got, err := store.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []task.AssignedTask{
		{Task: task.Task{ID: 9, Title: "Inventory", Description: "Count the shelves"}, SecondsSpent: 600},
	}
	require.NoError(t, store.ReplaceTasks(ctx, second))

	got, err = store.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestStoreEntriesAfter(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	ctx := context.Background()

	taskID := int64(7)
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	entries := []worklog.Entry{
		{Type: worklog.EntryLogin, Timestamp: base, Login: "alice"},
		{Type: worklog.EntryTaskStart, Timestamp: base.Add(5 * time.Minute), Login: "alice", TaskID: &taskID},
		{Type: worklog.EntryLogout, Timestamp: base.Add(20 * time.Minute), Login: "alice"},
	}
	for _, e := range entries {
		require.NoError(t, store.AppendEntry(ctx, e))
	}

	all, err := store.EntriesAfter(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, entries, all)

	cutoff := base.Add(5 * time.Minute)
	newer, err := store.EntriesAfter(ctx, &cutoff)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, worklog.EntryLogout, newer[0].Type)
}

func TestStoreEntryTimestampsKeptUTC(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	ctx := context.Background()

	warsaw := time.FixedZone("CET", 3600)
	local := time.Date(2026, 3, 2, 9, 0, 0, 0, warsaw)
	require.NoError(t, store.AppendEntry(ctx, worklog.Entry{
		Type: worklog.EntryLogin, Timestamp: local, Login: "alice",
	}))

	all, err := store.EntriesAfter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Timestamp.Equal(local))
	assert.Equal(t, time.UTC, all[0].Timestamp.Location())
}
