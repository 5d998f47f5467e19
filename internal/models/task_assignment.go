package models

import "time"

type AssignmentAction string

const (
	AssignmentAssigned   AssignmentAction = "assigned"
	AssignmentUnassigned AssignmentAction = "unassigned"
)

// TaskAssignment is one entry of a task's assignment history. For an
// unassignment UserID is the user the task was taken from.
type TaskAssignment struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	TaskID         string           `gorm:"type:varchar(32);not null;index" json:"task_id"`
	UserID         string           `gorm:"type:varchar(32);not null;index" json:"user_id"`
	PreviousUserID *string          `gorm:"type:varchar(32)" json:"previous_user_id,omitempty"`
	Action         AssignmentAction `gorm:"type:varchar(20);not null;default:'assigned'" json:"action"`
	AssignedAt     time.Time        `gorm:"not null" json:"assigned_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
