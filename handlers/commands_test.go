package handlers_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/martineghiazaryan/daily-reminder-bot/handlers"
	"github.com/martineghiazaryan/daily-reminder-bot/models"
	"github.com/martineghiazaryan/daily-reminder-bot/utils"
)

type fakeStore struct {
	nextID    int
	tasks     map[int]*models.Task
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: map[int]*models.Task{}}
}

func (f *fakeStore) Insert(_ context.Context, userID int64, task string, dueTime string) (int, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	f.tasks[f.nextID] = &models.Task{
		ID:      f.nextID,
		UserID:  userID,
		Task:    task,
		DueTime: dueTime,
		Status:  models.StatusPending,
	}
	return f.nextID, nil
}

func (f *fakeStore) ListPending(_ context.Context, userID int64) ([]models.Task, error) {
	out := []models.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID && t.Status == models.StatusPending {
			out = append(out, *t)
		}
	}
	// "HH:MM" sorts correctly as text
	sort.Slice(out, func(i, j int) bool { return out[i].DueTime < out[j].DueTime })
	return out, nil
}

func (f *fakeStore) SetStatus(_ context.Context, taskID int, status string) error {
	t, ok := f.tasks[taskID]
	if !ok {
		return utils.ErrTaskNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeStore) SetDescription(_ context.Context, taskID int, task string) error {
	t, ok := f.tasks[taskID]
	if !ok {
		return utils.ErrTaskNotFound
	}
	t.Task = task
	return nil
}

type fakeScheduler struct {
	jobs []models.ReminderJob
}

func (f *fakeScheduler) Schedule(job models.ReminderJob) (uuid.UUID, error) {
	f.jobs = append(f.jobs, job)
	return uuid.New(), nil
}

// eight in the morning, a fixed "now" for every test
var testNow = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func newCommands(store *fakeStore, sched *fakeScheduler) *handlers.Commands {
	return &handlers.Commands{
		Store:     store,
		Scheduler: sched,
		Now:       func() time.Time { return testNow },
	}
}

func TestAddStoresTaskAndSchedulesFutureReminder(t *testing.T) {
	store := newFakeStore()
	sched := &fakeScheduler{}
	c := newCommands(store, sched)

	reply := c.Add(context.Background(), 42, "09:00 Buy milk")

	if reply != "✅ Task #1 added: 'Buy milk' at 09:00" {
		t.Errorf("unexpected reply: %q", reply)
	}
	task, ok := store.tasks[1]
	if !ok {
		t.Fatal("task not stored")
	}
	if task.UserID != 42 || task.Task != "Buy milk" || task.DueTime != "09:00" || task.Status != models.StatusPending {
		t.Errorf("stored task = %+v", task)
	}
	if len(sched.jobs) != 1 {
		t.Fatalf("expected 1 scheduled job, got %d", len(sched.jobs))
	}
	job := sched.jobs[0]
	if job.TaskID != 1 || job.UserID != 42 || job.Task != "Buy milk" {
		t.Errorf("scheduled job = %+v", job)
	}
	want := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	if !job.FireAt.Equal(want) {
		t.Errorf("job fires at %v, want %v", job.FireAt, want)
	}
}

func TestAddPastDueTimeStoresButDoesNotSchedule(t *testing.T) {
	store := newFakeStore()
	sched := &fakeScheduler{}
	c := newCommands(store, sched)

	reply := c.Add(context.Background(), 42, "07:00 Already past")

	if !strings.Contains(reply, "Task #1 added") {
		t.Errorf("unexpected reply: %q", reply)
	}
	if len(store.tasks) != 1 {
		t.Fatalf("expected task stored, got %d", len(store.tasks))
	}
	if len(sched.jobs) != 0 {
		t.Fatalf("expected no scheduled jobs, got %d", len(sched.jobs))
	}
}

func TestAddPastDueTimeWithRolloverSchedulesTomorrow(t *testing.T) {
	store := newFakeStore()
	sched := &fakeScheduler{}
	c := newCommands(store, sched)
	c.Rollover = true

	c.Add(context.Background(), 42, "07:00 Morning run")

	if len(sched.jobs) != 1 {
		t.Fatalf("expected 1 scheduled job, got %d", len(sched.jobs))
	}
	want := time.Date(2025, time.March, 11, 7, 0, 0, 0, time.UTC)
	if !sched.jobs[0].FireAt.Equal(want) {
		t.Errorf("job fires at %v, want %v", sched.jobs[0].FireAt, want)
	}
}

func TestAddMalformedInputDoesNotMutateStore(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{name: "No arguments", args: ""},
		{name: "Missing description", args: "09:00"},
		{name: "Bad time", args: "25:99 Buy milk"},
		{name: "Time not first", args: "Buy milk 09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			sched := &fakeScheduler{}
			c := newCommands(store, sched)

			reply := c.Add(context.Background(), 42, tt.args)

			if reply != "Usage: /add HH:MM Task Description" {
				t.Errorf("unexpected reply: %q", reply)
			}
			if len(store.tasks) != 0 {
				t.Errorf("store mutated on malformed input: %d tasks", len(store.tasks))
			}
			if len(sched.jobs) != 0 {
				t.Errorf("scheduler touched on malformed input: %d jobs", len(sched.jobs))
			}
		})
	}
}

func TestAddStoreFailureYieldsErrorReply(t *testing.T) {
	store := newFakeStore()
	store.insertErr = &utils.StoreError{Op: "insert", Err: errors.New("connection refused")}
	sched := &fakeScheduler{}
	c := newCommands(store, sched)

	reply := c.Add(context.Background(), 42, "09:00 Buy milk")

	if !strings.HasPrefix(reply, "❌ Error") {
		t.Errorf("unexpected reply: %q", reply)
	}
	if len(sched.jobs) != 0 {
		t.Errorf("scheduled a reminder for an unsaved task")
	}
}

func TestListShowsOnlyOwnPendingTasksSorted(t *testing.T) {
	store := newFakeStore()
	sched := &fakeScheduler{}
	c := newCommands(store, sched)

	ctx := context.Background()
	c.Add(ctx, 42, "14:00 Afternoon thing")
	c.Add(ctx, 42, "09:00 Buy milk")
	c.Add(ctx, 99, "10:00 Someone else's task")
	c.Add(ctx, 42, "11:30 Call mom")
	c.Complete(ctx, "4") // Call mom is done, must not be listed

	reply := c.List(ctx, 42)

	want := "📌 Your Tasks for Today:\n" +
		"🕒 09:00 - Buy milk (ID: 2)\n" +
		"🕒 14:00 - Afternoon thing (ID: 1)"
	if reply != want {
		t.Errorf("List() = %q, want %q", reply, want)
	}
	if strings.Contains(reply, "Someone else's task") {
		t.Error("another user's task leaked into the listing")
	}
}

func TestListEmpty(t *testing.T) {
	c := newCommands(newFakeStore(), &fakeScheduler{})

	if reply := c.List(context.Background(), 42); reply != "📋 No pending tasks for today!" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestCompleteMarksTaskDone(t *testing.T) {
	store := newFakeStore()
	c := newCommands(store, &fakeScheduler{})
	ctx := context.Background()
	c.Add(ctx, 42, "09:00 Buy milk")

	reply := c.Complete(ctx, "1")

	if reply != "✅ Task 1 marked as complete!" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if store.tasks[1].Status != models.StatusDone {
		t.Errorf("status = %q, want done", store.tasks[1].Status)
	}
	if listed := c.List(ctx, 42); listed != "📋 No pending tasks for today!" {
		t.Errorf("completed task still listed: %q", listed)
	}
}

func TestCompleteMalformedID(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{name: "Empty", args: ""},
		{name: "Non-numeric", args: "abc"},
		{name: "Negative", args: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			c := newCommands(store, &fakeScheduler{})
			c.Add(context.Background(), 42, "09:00 Buy milk")

			reply := c.Complete(context.Background(), tt.args)

			if reply != "❌ Usage: /done <Task ID>" {
				t.Errorf("unexpected reply: %q", reply)
			}
			if store.tasks[1].Status != models.StatusPending {
				t.Error("store mutated on malformed input")
			}
		})
	}
}

func TestCompleteUnknownID(t *testing.T) {
	c := newCommands(newFakeStore(), &fakeScheduler{})

	reply := c.Complete(context.Background(), "5")

	if reply != "❌ Error: task 5 not found" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestEditChangesOnlyDescription(t *testing.T) {
	store := newFakeStore()
	c := newCommands(store, &fakeScheduler{})
	ctx := context.Background()
	c.Add(ctx, 42, "09:00 Buy milk")

	reply := c.Edit(ctx, "1 Buy oat milk")

	if reply != "✏️ Task 1 updated to: Buy oat milk" {
		t.Errorf("unexpected reply: %q", reply)
	}
	task := store.tasks[1]
	if task.Task != "Buy oat milk" {
		t.Errorf("description = %q", task.Task)
	}
	if task.DueTime != "09:00" || task.Status != models.StatusPending || task.UserID != 42 {
		t.Errorf("edit touched more than the description: %+v", task)
	}
}

func TestEditMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{name: "No arguments", args: ""},
		{name: "Missing description", args: "1"},
		{name: "Non-numeric id", args: "abc new text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			c := newCommands(store, &fakeScheduler{})
			c.Add(context.Background(), 42, "09:00 Buy milk")

			reply := c.Edit(context.Background(), tt.args)

			if reply != "Usage: /edit <Task ID> <New Task Description>" {
				t.Errorf("unexpected reply: %q", reply)
			}
			if store.tasks[1].Task != "Buy milk" {
				t.Error("store mutated on malformed input")
			}
		})
	}
}

func TestEditUnknownID(t *testing.T) {
	c := newCommands(newFakeStore(), &fakeScheduler{})

	reply := c.Edit(context.Background(), "7 new text")

	if reply != "❌ Error: task 7 not found" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestTaskIDsAreUniqueAndIncreasing(t *testing.T) {
	store := newFakeStore()
	c := newCommands(store, &fakeScheduler{})
	ctx := context.Background()

	var replies []string
	replies = append(replies, c.Add(ctx, 1, "09:00 one"))
	replies = append(replies, c.Add(ctx, 2, "10:00 two"))
	replies = append(replies, c.Add(ctx, 1, "11:00 three"))

	for i, want := range []string{"Task #1", "Task #2", "Task #3"} {
		if !strings.Contains(replies[i], want) {
			t.Errorf("reply %d = %q, want it to mention %s", i, replies[i], want)
		}
	}
}

func TestStartMentionsEveryCommand(t *testing.T) {
	c := newCommands(newFakeStore(), &fakeScheduler{})
	reply := c.Start()
	for _, cmd := range []string{"/add", "/tasks", "/done"} {
		if !strings.Contains(reply, cmd) {
			t.Errorf("welcome text does not mention %s: %q", cmd, reply)
		}
	}
}
