package models

import "time"

const TaskTitleMaxLength = 50

const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []string{StatusNew, StatusInProgress, StatusCompleted}

func IsValidTaskStatus(status string) bool {
	switch status {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// TaskStatusLabel returns the human readable name of the status.
func TaskStatusLabel(status string) string {
	switch status {
	case StatusNew:
		return "New"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return status
	}
}

type Task struct {
	ID          int64
	UserID      string
	ProjectID   *int64
	Title       string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
