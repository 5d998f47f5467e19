package repository

import (
	"context"

	"github.com/yukikurage/task-dashboard/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ListAll retrieves every task in insertion order
	ListAll(ctx context.Context) ([]models.Task, error)

	// Update updates a task's own columns
	Update(ctx context.Context, task *models.Task) error

	// Assign sets the task's assignee, moves the task count from the
	// previous assignee to the new one and records the assignment
	Assign(ctx context.Context, taskID, userID string) (*models.Task, error)

	// Unassign clears the task's assignee, releases its task count and
	// records the removal
	Unassign(ctx context.Context, taskID string) (*models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status     *models.TaskStatus
	Category   *models.TaskCategory
	Priority   *models.TaskPriority
	AssignedTo *string
	Search     string
	Page       int
	PageSize   int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List lists users matching the filter
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role   *models.UserRole
	Status *models.UserStatus
}
