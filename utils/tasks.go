package utils

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/martineghiazaryan/daily-reminder-bot/models"
)

// TaskStore wraps the shared connection pool. Every call checks out its own
// connection and commits on its own, so concurrent commands never interleave
// query state on a single connection.
type TaskStore struct {
	DB *pgxpool.Pool
}

// Insert stores a new pending task and returns its assigned id.
func (s *TaskStore) Insert(ctx context.Context, userID int64, task string, dueTime string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "INSERT INTO tasks (user_id, task, due_time, status) VALUES ($1, $2, $3, 'pending') RETURNING id;"
	var id int
	if err := s.DB.QueryRow(ctx, stmt, userID, task, dueTime).Scan(&id); err != nil {
		log.Println("Error inserting task:", err)
		return 0, &StoreError{Op: "insert", Err: err}
	}
	return id, nil
}

// ListPending returns the user's pending tasks ordered by due time. An empty
// slice is a normal answer, not an error.
func (s *TaskStore) ListPending(ctx context.Context, userID int64) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "SELECT id, user_id, task, to_char(due_time, 'HH24:MI'), status FROM tasks WHERE user_id = $1 AND status = 'pending' ORDER BY due_time ASC;"
	rows, err := s.DB.Query(ctx, stmt, userID)
	if err != nil {
		log.Println("Error querying tasks:", err)
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t := models.Task{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Task, &t.DueTime, &t.Status); err != nil {
			log.Println("Error scanning task row:", err)
			return nil, &StoreError{Op: "list", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		log.Println("Error after scanning all rows:", err)
		return nil, &StoreError{Op: "list", Err: err}
	}
	return tasks, nil
}

// ListAllPending returns every pending task regardless of owner. Used at
// startup to re-register reminder jobs from what the store still knows.
func (s *TaskStore) ListAllPending(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "SELECT id, user_id, task, to_char(due_time, 'HH24:MI'), status FROM tasks WHERE status = 'pending' ORDER BY due_time ASC;"
	rows, err := s.DB.Query(ctx, stmt)
	if err != nil {
		return nil, &StoreError{Op: "list all", Err: err}
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t := models.Task{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Task, &t.DueTime, &t.Status); err != nil {
			return nil, &StoreError{Op: "list all", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list all", Err: err}
	}
	return tasks, nil
}

// SetStatus updates a task's status. Unlike the usual UPDATE-and-shrug, a
// missing id is reported as ErrTaskNotFound so the caller can tell the user.
func (s *TaskStore) SetStatus(ctx context.Context, taskID int, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := s.DB.Exec(ctx, "UPDATE tasks SET status = $1 WHERE id = $2;", status, taskID)
	if err != nil {
		log.Println("Error updating task status:", err)
		return &StoreError{Op: "set status", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SetDescription updates only a task's description.
func (s *TaskStore) SetDescription(ctx context.Context, taskID int, task string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := s.DB.Exec(ctx, "UPDATE tasks SET task = $1 WHERE id = $2;", task, taskID)
	if err != nil {
		log.Println("Error updating task description:", err)
		return &StoreError{Op: "set description", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
