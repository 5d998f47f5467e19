package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-dashboard/internal/constants"
	apierrors "github.com/yukikurage/task-dashboard/internal/errors"
	"github.com/yukikurage/task-dashboard/internal/listview"
	"github.com/yukikurage/task-dashboard/internal/services"
)

// RequireView binds the request to the session's list view, starting a new
// view when the session has none
func RequireView(views *services.ViewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		viewID, _ := session.Get(constants.ContextKeyViewID).(string)
		if viewID == "" {
			viewID = views.NewViewID()
			session.Set(constants.ContextKeyViewID, viewID)
			if err := session.Save(); err != nil {
				apierrors.InternalError(c, "Failed to save session")
				c.Abort()
				return
			}
		}

		ctrl, err := views.Acquire(c.Request.Context(), viewID)
		if err != nil {
			if errors.Is(err, services.ErrViewServiceClosed) {
				apierrors.ServiceUnavailable(c, "")
			} else {
				apierrors.RespondWithError(c, http.StatusServiceUnavailable, apierrors.NewAPIError(apierrors.ErrCodeViewUnavailable, "Failed to load task view"))
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyViewID, viewID)
		c.Set(constants.ContextKeyView, ctrl)
		c.Next()
	}
}

// GetView retrieves the session's controller and view id from context
func GetView(c *gin.Context) (*listview.Controller, string, bool) {
	value, exists := c.Get(constants.ContextKeyView)
	if !exists {
		return nil, "", false
	}

	ctrl, ok := value.(*listview.Controller)
	if !ok || ctrl == nil {
		return nil, "", false
	}

	return ctrl, c.GetString(constants.ContextKeyViewID), true
}
