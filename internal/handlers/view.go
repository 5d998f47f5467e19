package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-dashboard/internal/dto"
	apierrors "github.com/yukikurage/task-dashboard/internal/errors"
	"github.com/yukikurage/task-dashboard/internal/listview"
	"github.com/yukikurage/task-dashboard/internal/middleware"
)

const defaultKeepAlive = 15 * time.Second

// ViewHandler drives the session's task list view
type ViewHandler struct {
	keepAlive time.Duration
}

// NewViewHandler creates a ViewHandler. keepAlive is the interval of SSE
// ping events; zero selects the default.
func NewViewHandler(keepAlive time.Duration) *ViewHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &ViewHandler{keepAlive: keepAlive}
}

func currentView(c *gin.Context) (*listview.Controller, string, bool) {
	ctrl, viewID, ok := middleware.GetView(c)
	if !ok {
		apierrors.InternalError(c, "View not found in context")
		return nil, "", false
	}
	return ctrl, viewID, true
}

func respondView(c *gin.Context, status int, ctrl *listview.Controller, viewID string) {
	c.JSON(status, dto.ToViewResponse(viewID, ctrl.Snapshot()))
}

// GetView returns the current rows, pager and modal
func (h *ViewHandler) GetView(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}
	respondView(c, http.StatusOK, ctrl, viewID)
}

// Reload refetches tasks and users, keeping filter and search
func (h *ViewHandler) Reload(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	if err := ctrl.Load(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondView(c, http.StatusOK, ctrl, viewID)
}

// ApplyFilters replaces the filter and returns page one
func (h *ViewHandler) ApplyFilters(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	var filter listview.Filter
	if !bindJSON(c, &filter) {
		return
	}

	ctrl.ApplyFilters(filter)
	respondView(c, http.StatusOK, ctrl, viewID)
}

// Search schedules a debounced search. With immediate=true the search runs
// synchronously and the new view is returned.
func (h *ViewHandler) Search(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	type SearchRequest struct {
		Term string `json:"term"`
	}

	var req SearchRequest
	if !bindJSON(c, &req) {
		return
	}

	if immediate, _ := strconv.ParseBool(c.Query("immediate")); immediate {
		ctrl.Search(req.Term)
		respondView(c, http.StatusOK, ctrl, viewID)
		return
	}

	ctrl.SearchDebounced(req.Term)
	c.JSON(http.StatusAccepted, dto.SearchAcceptedResponse{
		ViewID:  viewID,
		Term:    req.Term,
		Pending: ctrl.SearchPending(),
	})
}

// ChangePage moves to another page. Out of range pages leave the view
// untouched and report applied=false.
func (h *ViewHandler) ChangePage(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid page number")
		return
	}

	applied := ctrl.ChangePage(page)
	c.JSON(http.StatusOK, dto.PageChangeResponse{
		Applied:      applied,
		ViewResponse: dto.ToViewResponse(viewID, ctrl.Snapshot()),
	})
}

// TaskAction runs a row action such as view, edit or assign
func (h *ViewHandler) TaskAction(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	if err := ctrl.Dispatch(c.Request.Context(), c.Param("action"), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondView(c, http.StatusOK, ctrl, viewID)
}

// SelectAssignee completes the open assignment modal
func (h *ViewHandler) SelectAssignee(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	type SelectAssigneeRequest struct {
		UserID string `json:"user_id" binding:"required"`
	}

	var req SelectAssigneeRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := ctrl.SelectAssignee(c.Request.Context(), req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondView(c, http.StatusOK, ctrl, viewID)
}

// OpenCreateUser shows the create-user form
func (h *ViewHandler) OpenCreateUser(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	ctrl.OpenCreateUser()
	respondView(c, http.StatusOK, ctrl, viewID)
}

// CreateUser submits the create-user form
func (h *ViewHandler) CreateUser(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
		Role  string `json:"role"`
	}

	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.CreateUser(c.Request.Context(), listview.NewUser{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": dto.ToUserDTO(*user),
		"view": dto.ToViewResponse(viewID, ctrl.Snapshot()),
	})
}

// CloseModal hides the open modal
func (h *ViewHandler) CloseModal(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	ctrl.CloseModal()
	respondView(c, http.StatusOK, ctrl, viewID)
}

// Events streams every render of the view as server-sent events. The stream
// ends when the view is released so the client reconnects to a live one.
func (h *ViewHandler) Events(c *gin.Context) {
	ctrl, viewID, ok := currentView(c)
	if !ok {
		return
	}

	// holds at most the newest unsent snapshot
	updates := make(chan listview.Snapshot, 1)
	cancel := ctrl.Subscribe(func(snap listview.Snapshot) {
		for {
			select {
			case updates <- snap:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	initial := ctrl.Snapshot()
	lastSent := initial.Version
	c.SSEvent("view", dto.ToViewResponse(viewID, initial))
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ctrl.Done():
			c.SSEvent("closed", gin.H{"view_id": viewID})
			c.Writer.Flush()
			return
		case snap := <-updates:
			if snap.Version <= lastSent {
				continue
			}
			lastSent = snap.Version
			c.SSEvent("view", dto.ToViewResponse(viewID, snap))
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}
