package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderJob is the payload handed to the scheduler when a task is added.
// It is a snapshot taken at registration time: the dispatcher never re-reads
// the task row, so a later /edit does not change what the reminder says.
// Jobs live only in process memory; a restart drops every pending job.
type ReminderJob struct {
	ID     uuid.UUID
	TaskID int
	UserID int64
	Task   string
	FireAt time.Time
}
