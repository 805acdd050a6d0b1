package models

const (
	StatusPending = "pending"
	StatusDone    = "done"
)

type Task struct {
	ID      int    `db:"id"`
	UserID  int64  `db:"user_id"`
	Task    string `db:"task"`
	DueTime string `db:"due_time"` // "HH:MM", no date component
	Status  string `db:"status"`
}
