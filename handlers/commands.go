package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/martineghiazaryan/daily-reminder-bot/models"
	"github.com/martineghiazaryan/daily-reminder-bot/utils"
)

const (
	welcomeText = "👋 Welcome! Use /add <HH:MM> <Task> to add a task, /tasks to view tasks, and /done <ID> to complete a task."
	addUsage    = "Usage: /add HH:MM Task Description"
	doneUsage   = "❌ Usage: /done <Task ID>"
	editUsage   = "Usage: /edit <Task ID> <New Task Description>"

	storeErrorReply = "❌ Error: something went wrong talking to the task store, please try again."
)

// TaskStore is what the command handlers need from persistence.
type TaskStore interface {
	Insert(ctx context.Context, userID int64, task string, dueTime string) (int, error)
	ListPending(ctx context.Context, userID int64) ([]models.Task, error)
	SetStatus(ctx context.Context, taskID int, status string) error
	SetDescription(ctx context.Context, taskID int, task string) error
}

// ReminderScheduler registers one-shot reminder jobs.
type ReminderScheduler interface {
	Schedule(job models.ReminderJob) (uuid.UUID, error)
}

// Commands holds the dependencies shared by every command handler. Each
// handler is a single request/response: it validates, maybe touches the
// store, and always comes back with reply text. Errors stop here — a bad
// command or a failed store call costs one reply, never the process.
type Commands struct {
	Store     TaskStore
	Scheduler ReminderScheduler

	// Rollover moves an already-passed due time to tomorrow instead of never
	// firing it. Off by default.
	Rollover bool

	// Now is swappable in tests; nil means time.Now.
	Now func() time.Time
}

func (c *Commands) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Commands) Start() string {
	return welcomeText
}

// Add handles "/add HH:MM Task Description": store the task, then register a
// reminder job if the due time is still ahead. The reminder snapshot is taken
// here, so later edits do not change what gets spoken.
func (c *Commands) Add(ctx context.Context, userID int64, args string) string {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 {
		return addUsage
	}

	hour, minute, err := utils.ParseDueTime(parts[0])
	if err != nil {
		return addUsage
	}
	taskText := strings.TrimSpace(parts[1])
	if err := utils.ValidateTaskInput(taskText); err != nil {
		return "❌ Error: " + err.Error()
	}
	dueTime := fmt.Sprintf("%02d:%02d", hour, minute)

	id, err := c.Store.Insert(ctx, userID, taskText, dueTime)
	if err != nil {
		log.Println("Error adding task:", err)
		return storeErrorReply
	}

	if fireAt, ok := utils.NextFireTime(c.now(), hour, minute, c.Rollover); ok {
		job := models.ReminderJob{
			TaskID: id,
			UserID: userID,
			Task:   taskText,
			FireAt: fireAt,
		}
		if _, err := c.Scheduler.Schedule(job); err != nil {
			// The task is stored either way; only the reminder is lost.
			log.Println("Error scheduling reminder:", err)
		}
	}

	return fmt.Sprintf("✅ Task #%d added: '%s' at %s", id, taskText, dueTime)
}

// List handles "/tasks": the user's pending tasks, soonest first.
func (c *Commands) List(ctx context.Context, userID int64) string {
	tasks, err := c.Store.ListPending(ctx, userID)
	if err != nil {
		log.Println("Error listing tasks for user", userID, ":", err)
		return storeErrorReply
	}
	if len(tasks) == 0 {
		return "📋 No pending tasks for today!"
	}

	var b strings.Builder
	b.WriteString("📌 Your Tasks for Today:\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "🕒 %s - %s (ID: %d)\n", t.DueTime, t.Task, t.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Complete handles "/done <id>". Done is final: there is no way back to
// pending, and the task disappears from /tasks.
func (c *Commands) Complete(ctx context.Context, args string) string {
	id, err := utils.ParseTaskID(args)
	if err != nil {
		return doneUsage
	}

	if err := c.Store.SetStatus(ctx, id, models.StatusDone); err != nil {
		if errors.Is(err, utils.ErrTaskNotFound) {
			return fmt.Sprintf("❌ Error: task %d not found", id)
		}
		log.Println("Error completing task:", err)
		return storeErrorReply
	}
	return fmt.Sprintf("✅ Task %d marked as complete!", id)
}

// Edit handles "/edit <id> <new description>". Only the description changes;
// due time, status, and owner stay as they are.
func (c *Commands) Edit(ctx context.Context, args string) string {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 {
		return editUsage
	}

	id, err := utils.ParseTaskID(parts[0])
	if err != nil {
		return editUsage
	}
	taskText := strings.TrimSpace(parts[1])
	if err := utils.ValidateTaskInput(taskText); err != nil {
		return "❌ Error: " + err.Error()
	}

	if err := c.Store.SetDescription(ctx, id, taskText); err != nil {
		if errors.Is(err, utils.ErrTaskNotFound) {
			return fmt.Sprintf("❌ Error: task %d not found", id)
		}
		log.Println("Error editing task:", err)
		return storeErrorReply
	}
	return fmt.Sprintf("✏️ Task %d updated to: %s", id, taskText)
}
