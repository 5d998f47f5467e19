package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-dashboard/internal/database"
	"github.com/yukikurage/task-dashboard/internal/models"
	"github.com/yukikurage/task-dashboard/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrAssigneeMissing is returned when the assignee row vanished inside the assignment transaction.
	ErrAssigneeMissing = errors.New("task repository: assignee not found")
	// ErrNotAssigned is returned by Unassign for a task without an assignee.
	ErrNotAssigned = errors.New("task repository: task has no assignee")
)

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '!'
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("tasks.category = ?", *filter.Category)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		query = query.Where("LOWER(tasks.id) LIKE ? ESCAPE '!' OR LOWER(tasks.title) LIKE ? ESCAPE '!'", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at ASC").Order("tasks.id ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListAll retrieves every task in insertion order
func (r *GormTaskRepository) ListAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Assign sets the assignee in a transaction together with the task count
// bookkeeping and the assignment history entry
func (r *GormTaskRepository) Assign(ctx context.Context, taskID, userID string) (*models.Task, error) {
	var task models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}

		previous := task.AssignedTo
		if previous != nil && *previous == userID {
			return nil
		}

		if previous != nil && *previous != "" {
			if err := tx.Model(&models.User{}).
				Where("id = ? AND task_count > 0", *previous).
				UpdateColumn("task_count", gorm.Expr("task_count - ?", 1)).Error; err != nil {
				return fmt.Errorf("failed to release previous assignee: %w", err)
			}
		}

		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("task_count", gorm.Expr("task_count + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to count assignment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAssigneeMissing
		}

		if err := tx.Model(&task).Update("assigned_to", userID).Error; err != nil {
			return err
		}
		task.AssignedTo = &userID

		return tx.Create(&models.TaskAssignment{
			TaskID:         taskID,
			UserID:         userID,
			PreviousUserID: previous,
			Action:         models.AssignmentAssigned,
			AssignedAt:     time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// Unassign clears the assignee in a transaction, releasing the assignee's
// task count and recording the removal in the assignment history
func (r *GormTaskRepository) Unassign(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}
		if !task.IsAssigned() {
			return ErrNotAssigned
		}
		previous := *task.AssignedTo

		if err := tx.Model(&models.User{}).
			Where("id = ? AND task_count > 0", previous).
			UpdateColumn("task_count", gorm.Expr("task_count - ?", 1)).Error; err != nil {
			return fmt.Errorf("failed to release assignee: %w", err)
		}

		if err := tx.Model(&task).Update("assigned_to", nil).Error; err != nil {
			return err
		}
		task.AssignedTo = nil

		return tx.Create(&models.TaskAssignment{
			TaskID:         taskID,
			UserID:         previous,
			PreviousUserID: &previous,
			Action:         models.AssignmentUnassigned,
			AssignedAt:     time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}
