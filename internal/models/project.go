package models

import "time"

const ProjectNameMaxLength = 50

// Project belongs to exactly one user. Deadline holds a calendar
// date at UTC midnight, nil when the project has none.
type Project struct {
	ID          int64
	UserID      string
	Name        string
	Description string
	Deadline    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
