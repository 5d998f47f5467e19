package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-dashboard/internal/middleware"
	"github.com/yukikurage/task-dashboard/internal/services"
)

// Services bundles what the HTTP layer depends on
type Services struct {
	Tasks     *services.TaskService
	Users     *services.UserService
	Views     *services.ViewService
	KeepAlive time.Duration
}

// RegisterRoutes mounts the REST and view APIs on r
func RegisterRoutes(r gin.IRouter, svc Services) {
	taskHandler := NewTaskHandler(svc.Tasks)
	userHandler := NewUserHandler(svc.Users)
	viewHandler := NewViewHandler(svc.KeepAlive)

	api := r.Group("/api")
	{
		// Task routes
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTask(svc.Tasks), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTask(svc.Tasks), taskHandler.UpdateTask)
			tasks.POST("/:id/status", middleware.RequireTask(svc.Tasks), taskHandler.UpdateStatus)
			tasks.POST("/:id/assign", middleware.RequireTask(svc.Tasks), taskHandler.AssignTask)
			tasks.POST("/:id/unassign", middleware.RequireTask(svc.Tasks), taskHandler.UnassignTask)
		}

		// User routes
		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/assignable", userHandler.ListAssignable)
			users.POST("", userHandler.CreateUser)
		}

		// Session-bound list view
		view := api.Group("/view")
		view.Use(middleware.RequireView(svc.Views))
		{
			view.GET("", viewHandler.GetView)
			view.POST("/reload", viewHandler.Reload)
			view.POST("/filters", viewHandler.ApplyFilters)
			view.POST("/search", viewHandler.Search)
			view.POST("/pages/:page", viewHandler.ChangePage)
			view.POST("/tasks/:id/:action", viewHandler.TaskAction)
			view.POST("/modal/assignee", viewHandler.SelectAssignee)
			view.POST("/modal/create-user", viewHandler.OpenCreateUser)
			view.DELETE("/modal", viewHandler.CloseModal)
			view.POST("/users", viewHandler.CreateUser)
			view.GET("/events", viewHandler.Events)
		}
	}
}
