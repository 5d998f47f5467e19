package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
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

// MiddlewareTestSuite defines the test suite for the middleware package
type MiddlewareTestSuite struct {
	suite.Suite
	db     *gorm.DB
	tasks  *services.TaskService
	views  *services.ViewService
	router *gin.Engine
}

func (suite *MiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.db = testutil.NewTestDB(suite.T())
	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	suite.tasks = services.NewTaskService(taskRepo, userRepo)
	suite.views = services.NewViewService(suite.tasks, services.NewUserService(userRepo),
		services.ViewConfig{PageSize: 10, SearchDebounce: 10 * time.Millisecond, IdleTimeout: time.Minute},
		zerolog.Nop(),
	)

	suite.Require().NoError(suite.db.Create(&models.Task{
		ID: "T1001", Title: "Label street images", Category: models.CategoryImageAnnotation,
		Priority: models.PriorityHigh, Status: models.TaskStatusPending,
	}).Error)

	suite.router = gin.New()
	suite.router.Use(sessions.Sessions(constants.SessionName, cookie.NewStore([]byte("test-secret"))))
}

func (suite *MiddlewareTestSuite) TearDownTest() {
	suite.views.Stop()
}

func (suite *MiddlewareTestSuite) TestRequireViewCreatesAndReusesSessionView() {
	suite.router.GET("/view", RequireView(suite.views), func(c *gin.Context) {
		ctrl, id, ok := GetView(c)
		suite.Require().True(ok)
		c.JSON(http.StatusOK, gin.H{"view_id": id, "total_pages": ctrl.TotalPages()})
	})

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/view", nil))
	suite.Require().Equal(http.StatusOK, w.Code)

	var first map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &first))
	suite.NotEmpty(first["view_id"])

	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Require().Equal(http.StatusOK, w.Code)

	var second map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &second))
	suite.Equal(first["view_id"], second["view_id"])
	suite.Equal(1, suite.views.Count())
}

func (suite *MiddlewareTestSuite) TestRequireViewAfterShutdown() {
	suite.views.Stop()
	suite.router.GET("/view", RequireView(suite.views), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/view", nil))
	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *MiddlewareTestSuite) TestGetViewWithoutMiddleware() {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, _, ok := GetView(c)
	suite.False(ok)

	_, ok = GetTask(c)
	suite.False(ok)
}

func (suite *MiddlewareTestSuite) TestRequireTask() {
	suite.router.GET("/tasks/:id", RequireTask(suite.tasks), func(c *gin.Context) {
		task, ok := GetTask(c)
		suite.Require().True(ok)
		c.JSON(http.StatusOK, gin.H{"id": task.ID})
	})

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/T1001", nil))
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "T1001")

	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/T404", nil))
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "NOT_FOUND")
}

func (suite *MiddlewareTestSuite) TestRequestLogger() {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?page=2", nil))

	var line map[string]interface{}
	suite.Require().NoError(json.Unmarshal(buf.Bytes(), &line))
	suite.Equal("info", line["level"])
	suite.Equal("/ok?page=2", line["path"])
	suite.Equal(float64(http.StatusOK), line["status"])

	buf.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	suite.Require().NoError(json.Unmarshal(buf.Bytes(), &line))
	suite.Equal("error", line["level"])
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
