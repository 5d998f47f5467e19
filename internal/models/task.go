package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskCategory string

const (
	CategoryDataEntry       TaskCategory = "data_entry"
	CategoryDataLabeling    TaskCategory = "data_labeling"
	CategoryTranscription   TaskCategory = "transcription"
	CategorySurvey          TaskCategory = "survey"
	CategoryImageAnnotation TaskCategory = "image_annotation"
	CategoryTextAnalysis    TaskCategory = "text_analysis"
	CategoryOther           TaskCategory = "other"
)

// statusTransitions lists the statuses reachable from each known status.
// Statuses outside the table belong to the open set and may move to any
// other status.
var statusTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusInProgress, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusDone, TaskStatusCancelled},
	TaskStatusDone:       {},
	TaskStatusCancelled:  {},
}

// CanTransition reports whether a task may move from one status to another
func CanTransition(from, to TaskStatus) bool {
	if to == "" || to == from {
		return false
	}
	next, known := statusTransitions[from]
	if !known {
		return true
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string       `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Category    TaskCategory `gorm:"type:varchar(50);not null;index" json:"category"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium';index" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AssignedTo  *string      `gorm:"type:varchar(32);index" json:"assigned_to"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Assignee    *User            `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}

// IsAssigned reports whether the task has an assignee
func (t Task) IsAssigned() bool {
	return t.AssignedTo != nil && *t.AssignedTo != ""
}
