package postgresql_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/employee"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
	"github.com/timeclock-hq/timeclock-backend-go/internal/reconcile"
	"github.com/timeclock-hq/timeclock-backend-go/internal/repository/postgresql"
)

func TestEmployeeRepository(t *testing.T) {
	db := testDatabase(t)
	truncateAll(t, db)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	alice := employee.Employee{Login: "alice", Password: "hunter2", Name: "Alice", Active: true}
	require.NoError(t, repo.Create(ctx, alice))

	err := repo.Create(ctx, alice)
	assert.ErrorIs(t, err, employee.ErrLoginExists)

	got, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = repo.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	alice.Name = "Alice K."
	require.NoError(t, repo.Update(ctx, alice))
	require.NoError(t, repo.SetActive(ctx, "alice", false))

	got, err = repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice K.", got.Name)
	assert.False(t, got.Active)

	require.NoError(t, repo.Create(ctx, employee.Employee{Login: "bob", Password: "pw", Name: "Bob", Active: true}))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Login)
	assert.Equal(t, "bob", all[1].Login)
}

func TestTaskRepositoryAssignments(t *testing.T) {
	db := testDatabase(t)
	truncateAll(t, db)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(db)
	tasks := postgresql.NewTaskRepository(db)

	require.NoError(t, employees.Create(ctx, employee.Employee{Login: "alice", Password: "pw", Name: "Alice", Active: true}))
	created, err := tasks.Create(ctx, task.Task{Title: "Sort inbox", Description: "Oldest first", Status: task.StatusActive})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = tasks.Create(ctx, task.Task{Title: "Sort inbox", Status: task.StatusActive})
	assert.ErrorIs(t, err, task.ErrTitleExists)

	require.NoError(t, tasks.Assign(ctx, "alice", created.ID))
	assert.ErrorIs(t, tasks.Assign(ctx, "alice", created.ID), task.ErrAlreadyAssigned)
	assert.ErrorIs(t, tasks.Assign(ctx, "alice", 9999), task.ErrTaskNotFound)

	status, err := tasks.AssignmentStatus(ctx, "alice", created.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, task.AssignmentStatus{}, *status)

	status, err = tasks.AssignmentStatus(ctx, "alice", 9999)
	require.NoError(t, err)
	assert.Nil(t, status)

	require.NoError(t, tasks.UpdateAssignment(ctx, "alice", created.ID, task.AssignmentStatus{
		TimeSpent: 30 * time.Minute,
	}))

	active, err := tasks.ActiveTasksForEmployee(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)
	assert.Equal(t, int64(1800), active[0].SecondsSpent)

	require.NoError(t, tasks.SetAssignmentActive(ctx, "alice", created.ID, false))
	active, err = tasks.ActiveTasksForEmployee(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, active)

	assignments, err := tasks.AssignmentsForEmployee(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.False(t, assignments[0].Active)
	assert.Equal(t, 30*time.Minute, assignments[0].TimeSpent)
}

func TestWorklogRepository(t *testing.T) {
	db := testDatabase(t)
	truncateAll(t, db)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(db)
	worklogs := postgresql.NewWorklogRepository(db)

	require.NoError(t, employees.Create(ctx, employee.Employee{Login: "alice", Password: "pw", Name: "Alice", Active: true}))

	deviceID, err := worklogs.FindOrCreateDevice(ctx, "8f14e45f-ceea-467f-a5f1-94c6e07b1a58")
	require.NoError(t, err)
	again, err := worklogs.FindOrCreateDevice(ctx, "8f14e45f-ceea-467f-a5f1-94c6e07b1a58")
	require.NoError(t, err)
	assert.Equal(t, deviceID, again)

	last, err := worklogs.LastEntryTimestampForDevice(ctx, deviceID)
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, worklogs.InsertEntry(ctx, worklog.Entry{
		Type: worklog.EntryLogin, Timestamp: base, Login: "alice",
	}, deviceID))
	require.NoError(t, worklogs.InsertEntry(ctx, worklog.Entry{
		Type: worklog.EntryLogout, Timestamp: base.Add(time.Hour), Login: "alice",
	}, deviceID))

	last, err = worklogs.LastEntryTimestampForDevice(ctx, deviceID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(base.Add(time.Hour)))

	entries, err := worklogs.UnprocessedEntriesForEmployee(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, worklog.EntryLogin, entries[0].Type)
	assert.Equal(t, deviceID, entries[0].DeviceID)

	require.NoError(t, worklogs.MarkProcessed(ctx, entries[0].ID))
	entries, err = worklogs.UnprocessedEntriesForEmployee(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, worklog.EntryLogout, entries[0].Type)
}

func TestReconcileRunnerEndToEnd(t *testing.T) {
	db := testDatabase(t)
	truncateAll(t, db)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(db)
	tasks := postgresql.NewTaskRepository(db)
	worklogs := postgresql.NewWorklogRepository(db)

	require.NoError(t, employees.Create(ctx, employee.Employee{Login: "alice", Password: "pw", Name: "Alice", Active: true}))
	created, err := tasks.Create(ctx, task.Task{Title: "Sort inbox", Status: task.StatusActive})
	require.NoError(t, err)
	require.NoError(t, tasks.Assign(ctx, "alice", created.ID))

	deviceID, err := worklogs.FindOrCreateDevice(ctx, "8f14e45f-ceea-467f-a5f1-94c6e07b1a58")
	require.NoError(t, err)

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	taskID := created.ID
	for _, e := range []worklog.Entry{
		{Type: worklog.EntryLogin, Timestamp: base, Login: "alice"},
		{Type: worklog.EntryTaskStart, Timestamp: base.Add(5 * time.Minute), Login: "alice", TaskID: &taskID},
		{Type: worklog.EntryTaskPause, Timestamp: base.Add(35 * time.Minute), Login: "alice", TaskID: &taskID},
		{Type: worklog.EntryLogout, Timestamp: base.Add(40 * time.Minute), Login: "alice"},
	} {
		require.NoError(t, worklogs.InsertEntry(ctx, e, deviceID))
	}

	runner := reconcile.NewRunner(db, worklogs, tasks, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, runner.Reconcile(ctx, "alice"))

	status, err := tasks.AssignmentStatus(ctx, "alice", created.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 30*time.Minute, status.TimeSpent)
	assert.False(t, status.Finished)

	remaining, err := worklogs.UnprocessedEntriesForEmployee(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
