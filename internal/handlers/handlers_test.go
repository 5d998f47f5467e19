package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-dashboard/internal/constants"
	"github.com/yukikurage/task-dashboard/internal/models"
	"github.com/yukikurage/task-dashboard/internal/repository"
	"github.com/yukikurage/task-dashboard/internal/services"
	"github.com/yukikurage/task-dashboard/internal/testutil"
	"gorm.io/gorm"
)

// handlerSuite wires the full router over an in-memory database. The
// handler suites embed it.
type handlerSuite struct {
	suite.Suite
	db      *gorm.DB
	router  *gin.Engine
	views   *services.ViewService
	cookies []*http.Cookie
}

// SetupTest runs before each test
func (suite *handlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.db = testutil.NewTestDB(suite.T())
	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	taskService := services.NewTaskService(taskRepo, userRepo)
	userService := services.NewUserService(userRepo)
	suite.views = services.NewViewService(taskService, userService, services.ViewConfig{
		PageSize:       10,
		SearchDebounce: 30 * time.Millisecond,
		IdleTimeout:    time.Minute,
	}, zerolog.Nop())

	suite.router = gin.New()
	suite.router.Use(sessions.Sessions(constants.SessionName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(suite.router, Services{
		Tasks:     taskService,
		Users:     userService,
		Views:     suite.views,
		KeepAlive: time.Hour,
	})

	suite.cookies = nil
}

// TearDownTest runs after each test
func (suite *handlerSuite) TearDownTest() {
	suite.views.Stop()
}

func (suite *handlerSuite) seedUsers() {
	users := []models.User{
		{ID: "U00000001", Name: "John Doe", Email: "john@example.com", Role: models.RoleUser, Status: models.UserStatusActive},
		{ID: "U00000002", Name: "Ada Admin", Email: "ada@example.com", Role: models.RoleAdmin, Status: models.UserStatusActive},
		{ID: "U00000003", Name: "Old Timer", Email: "old@example.com", Role: models.RoleUser, Status: models.UserStatusInactive},
	}
	suite.Require().NoError(suite.db.Create(&users).Error)
}

func (suite *handlerSuite) seedTasks(n int) {
	for i := 1; i <= n; i++ {
		status := models.TaskStatusPending
		if i%2 == 0 {
			status = models.TaskStatusDone
		}
		suite.Require().NoError(suite.db.Create(&models.Task{
			ID:       fmt.Sprintf("T%d", 1000+i),
			Title:    fmt.Sprintf("Task number %d", i),
			Category: models.CategoryDataEntry,
			Priority: models.PriorityMedium,
			Status:   status,
		}).Error)
	}
}

// do sends a request, carrying the session cookie between calls
func (suite *handlerSuite) do(method, url string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, ck := range suite.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	if cks := w.Result().Cookies(); len(cks) > 0 {
		suite.cookies = cks
	}
	return w
}

func (suite *handlerSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
