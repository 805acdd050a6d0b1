package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDueTime parses a "HH:MM" time-of-day as typed by the user.
func ParseDueTime(s string) (hour int, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, &ValidationError{Msg: fmt.Sprintf("invalid time %q, expected HH:MM", s)}
	}
	return t.Hour(), t.Minute(), nil
}

// ParseTaskID parses a task id argument from a command.
func ParseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, &ValidationError{Msg: fmt.Sprintf("invalid task id %q", s)}
	}
	return id, nil
}

func ValidateTaskInput(task string) error {
	if len(task) == 0 || len(task) > 255 {
		return &ValidationError{Msg: "task description must be between 1 and 255 characters"}
	}
	return nil
}
