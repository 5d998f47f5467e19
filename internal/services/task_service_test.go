package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-dashboard/internal/models"
	"github.com/yukikurage/task-dashboard/internal/repository"
	"github.com/yukikurage/task-dashboard/internal/testutil"
	"gorm.io/gorm"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
	ctx     context.Context
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.service = NewTaskService(repository.NewTaskRepository(suite.db), repository.NewUserRepository(suite.db))
	suite.ctx = context.Background()
}

func (suite *TaskServiceTestSuite) createUser(id string, role models.UserRole, status models.UserStatus) *models.User {
	user := &models.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role, Status: status}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTask(id string, status models.TaskStatus) *models.Task {
	task, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{
		ID:       id,
		Title:    "Task " + id,
		Category: models.CategoryDataEntry,
		Status:   status,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) TestCreateTaskDefaults() {
	task, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{Title: "  Review survey  "})
	suite.Require().NoError(err)

	suite.Regexp(`^T[0-9A-F]{12}$`, task.ID)
	suite.Equal("Review survey", task.Title)
	suite.Equal(models.PriorityMedium, task.Priority)
	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Equal(models.CategoryOther, task.Category)
}

func (suite *TaskServiceTestSuite) TestCreateTaskValidation() {
	_, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{Title: "   "})
	suite.ErrorIs(err, ErrTitleRequired)

	_, err = suite.service.CreateTask(suite.ctx, CreateTaskInput{Title: "Valid", Priority: "urgent"})
	suite.ErrorIs(err, ErrInvalidPriority)
}

func (suite *TaskServiceTestSuite) TestGetTaskNotFound() {
	_, err := suite.service.GetTask(suite.ctx, "T404")
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTask() {
	suite.createTask("T1001", models.TaskStatusPending)

	title := "Updated title"
	priority := models.PriorityHigh
	category := models.CategorySurvey
	task, err := suite.service.UpdateTask(suite.ctx, "T1001", UpdateTaskInput{
		Title:    &title,
		Priority: &priority,
		Category: &category,
	})
	suite.Require().NoError(err)
	suite.Equal("Updated title", task.Title)
	suite.Equal(models.PriorityHigh, task.Priority)
	suite.Equal(models.CategorySurvey, task.Category)

	empty := " "
	_, err = suite.service.UpdateTask(suite.ctx, "T1001", UpdateTaskInput{Title: &empty})
	suite.ErrorIs(err, ErrTitleEmpty)

	bad := models.TaskPriority("urgent")
	_, err = suite.service.UpdateTask(suite.ctx, "T1001", UpdateTaskInput{Priority: &bad})
	suite.ErrorIs(err, ErrInvalidPriority)

	_, err = suite.service.UpdateTask(suite.ctx, "T404", UpdateTaskInput{Title: &title})
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateStatusTransitions() {
	suite.createTask("T1001", models.TaskStatusPending)

	task, err := suite.service.UpdateStatus(suite.ctx, "T1001", models.TaskStatusInProgress)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, task.Status)

	task, err = suite.service.UpdateStatus(suite.ctx, "T1001", models.TaskStatusDone)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusDone, task.Status)

	_, err = suite.service.UpdateStatus(suite.ctx, "T1001", models.TaskStatusPending)
	suite.ErrorIs(err, ErrInvalidTransition)

	_, err = suite.service.UpdateStatus(suite.ctx, "T1001", models.TaskStatusDone)
	suite.ErrorIs(err, ErrInvalidTransition)

	_, err = suite.service.UpdateStatus(suite.ctx, "T1001", "")
	suite.ErrorIs(err, ErrStatusRequired)
}

func (suite *TaskServiceTestSuite) TestUpdateStatusRejectsSameStatus() {
	suite.createTask("T1001", models.TaskStatusPending)

	_, err := suite.service.UpdateStatus(suite.ctx, "T1001", models.TaskStatusPending)
	suite.ErrorIs(err, ErrInvalidTransition)

	_, err = suite.service.UpdateStatus(suite.ctx, "T1001", models.TaskStatusInProgress)
	suite.Require().NoError(err)
	_, err = suite.service.UpdateStatus(suite.ctx, "T1001", models.TaskStatusPending)
	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *TaskServiceTestSuite) TestCreateTaskDuplicateID() {
	suite.createTask("T1001", models.TaskStatusPending)

	_, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{ID: "T1001", Title: "dup"})
	suite.ErrorIs(err, ErrTaskIDTaken)
}

func (suite *TaskServiceTestSuite) TestAssignTask() {
	suite.createUser("U00000001", models.RoleUser, models.UserStatusActive)
	suite.createTask("T1001", models.TaskStatusPending)

	task, err := suite.service.AssignTask(suite.ctx, "T1001", "U00000001")
	suite.Require().NoError(err)
	suite.Equal("U00000001", *task.AssignedTo)

	var user models.User
	suite.Require().NoError(suite.db.First(&user, "id = ?", "U00000001").Error)
	suite.Equal(1, user.TaskCount)
}

func (suite *TaskServiceTestSuite) TestUnassignTask() {
	suite.createUser("U00000001", models.RoleUser, models.UserStatusActive)
	suite.createTask("T1001", models.TaskStatusPending)
	_, err := suite.service.AssignTask(suite.ctx, "T1001", "U00000001")
	suite.Require().NoError(err)

	task, err := suite.service.UnassignTask(suite.ctx, "T1001")
	suite.Require().NoError(err)
	suite.Nil(task.AssignedTo)

	var user models.User
	suite.Require().NoError(suite.db.First(&user, "id = ?", "U00000001").Error)
	suite.Equal(0, user.TaskCount)

	_, err = suite.service.UnassignTask(suite.ctx, "T1001")
	suite.ErrorIs(err, ErrTaskNotAssigned)

	_, err = suite.service.UnassignTask(suite.ctx, "T404")
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestAssignTaskRejectsIneligibleUsers() {
	suite.createUser("U00000002", models.RoleAdmin, models.UserStatusActive)
	suite.createUser("U00000003", models.RoleUser, models.UserStatusInactive)
	suite.createTask("T1001", models.TaskStatusPending)

	_, err := suite.service.AssignTask(suite.ctx, "T1001", "U00000002")
	suite.ErrorIs(err, ErrAssigneeNotAssignable)

	_, err = suite.service.AssignTask(suite.ctx, "T1001", "U00000003")
	suite.ErrorIs(err, ErrAssigneeNotAssignable)

	_, err = suite.service.AssignTask(suite.ctx, "T1001", "U99999999")
	suite.ErrorIs(err, ErrAssigneeNotFound)

	_, err = suite.service.AssignTask(suite.ctx, "T404", "U00000002")
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.service.AssignTask(suite.ctx, "T1001", "")
	suite.ErrorIs(err, ErrAssigneeRequired)
}

func (suite *TaskServiceTestSuite) TestListTasks() {
	suite.createTask("T1001", models.TaskStatusPending)
	suite.createTask("T1002", models.TaskStatusDone)
	suite.createTask("T1003", models.TaskStatusPending)

	pending := models.TaskStatusPending
	tasks, total, err := suite.service.ListTasks(suite.ctx, ListTasksInput{Status: &pending, Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(tasks, 2)

	tasks, total, err = suite.service.ListTasks(suite.ctx, ListTasksInput{Search: "t1002"})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("T1002", tasks[0].ID)

	all, err := suite.service.AllTasks(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(all, 3)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
