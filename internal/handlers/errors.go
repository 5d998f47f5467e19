package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-dashboard/internal/errors"
	"github.com/yukikurage/task-dashboard/internal/listview"
	"github.com/yukikurage/task-dashboard/internal/services"
)

// bindJSON binds the request body, answering 400 with the binding error
// as details when it fails
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return false
	}
	return true
}

// respondServiceError maps service and view errors to API errors
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, listview.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrStatusRequired),
		errors.Is(err, services.ErrAssigneeRequired),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrEmailInvalid),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, listview.ErrUnknownAction):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrTaskIDTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrTaskNotAssigned):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.Unprocessable(c, apierrors.ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, services.ErrAssigneeNotAssignable),
		errors.Is(err, listview.ErrUserNotAssignable),
		errors.Is(err, listview.ErrNoPendingAssignment):
		apierrors.Unprocessable(c, apierrors.ErrCodeInvalidOperation, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "Internal server error")
	}
}
