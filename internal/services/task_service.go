package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-dashboard/internal/models"
	"github.com/yukikurage/task-dashboard/internal/repository"
	"github.com/yukikurage/task-dashboard/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrTaskIDTaken           = errors.New("task id already exists")
	ErrTitleRequired         = errors.New("title is required")
	ErrTitleEmpty            = errors.New("title cannot be empty")
	ErrInvalidPriority       = errors.New("priority must be one of low, medium, high")
	ErrStatusRequired        = errors.New("status is required")
	ErrInvalidTransition     = errors.New("status transition is not allowed")
	ErrAssigneeRequired      = errors.New("user_id is required")
	ErrAssigneeNotFound      = errors.New("assignee not found")
	ErrAssigneeNotAssignable = errors.New("assignee must be an active user with role user")
	ErrTaskNotAssigned       = errors.New("task has no assignee")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Category   *models.TaskCategory
	Priority   *models.TaskPriority
	AssignedTo *string
	Search     string
	Page       int
	PageSize   int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ID          string
	Title       string
	Description string
	Category    models.TaskCategory
	Priority    models.TaskPriority
	Status      models.TaskStatus
}

// UpdateTaskInput represents input for the edit flow
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Category    *models.TaskCategory
	Priority    *models.TaskPriority
}

// ListTasks returns one page of tasks matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Status:     input.Status,
		Category:   input.Category,
		Priority:   input.Priority,
		AssignedTo: input.AssignedTo,
		Search:     input.Search,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// AllTasks returns the full task set in insertion order
func (s *TaskService) AllTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task with its assignee and assignment history
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	return s.findTask(ctx, taskID, "Assignee", "Assignments", "Assignments.User")
}

// CreateTask validates and stores a new task
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if input.Category == "" {
		input.Category = models.CategoryOther
	}
	if input.ID == "" {
		input.ID = utils.GenerateTaskID()
	}

	task := &models.Task{
		ID:          input.ID,
		Title:       title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      input.Status,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTaskIDTaken
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask applies the edit form to an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// UpdateStatus moves a task to a new status if the transition is allowed
func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error) {
	if status == "" {
		return nil, ErrStatusRequired
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(task.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, task.Status, status)
	}

	task.Status = status
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return task, nil
}

// AssignTask assigns a task to an active user with role user
func (s *TaskService) AssignTask(ctx context.Context, taskID, userID string) (*models.Task, error) {
	if userID == "" {
		return nil, ErrAssigneeRequired
	}

	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	if !user.Assignable() {
		return nil, ErrAssigneeNotAssignable
	}

	task, err := s.taskRepo.Assign(ctx, taskID, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, repository.ErrAssigneeMissing):
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	return task, nil
}

// UnassignTask removes the task's assignee
func (s *TaskService) UnassignTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.Unassign(ctx, taskID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, repository.ErrNotAssigned):
			return nil, ErrTaskNotAssigned
		}
		return nil, fmt.Errorf("failed to unassign task: %w", err)
	}

	return task, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID string, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
