package app

import (
	"course_platform_backend/internal/config"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/util"
	"course_platform_backend/pkg/database"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-test-secret-test-secret"

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: gin.TestMode},
		JWT:       config.JWTConfig{Secret: testSecret},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Exam:      config.ExamConfig{PassingGrade: 80, AnswerPrefix: "choice_", SessionSeconds: 3600},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}
}

type testEnv struct {
	app    *App
	db     *gorm.DB
	course model.Course
	user   model.User
	q      model.Question
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	env := &testEnv{db: db}
	env.user = model.User{Name: "alice", Email: "alice@example.com", Role: model.Student}
	require.NoError(t, db.Create(&env.user).Error)

	pub := time.Now()
	env.course = model.Course{Name: "Go Basics", PubDate: &pub, IsActive: true}
	require.NoError(t, db.Create(&env.course).Error)
	require.NoError(t, db.Create(&model.Lesson{CourseID: env.course.ID, Title: "Intro", Order: 1}).Error)
	require.NoError(t, db.Create(&model.Lesson{CourseID: env.course.ID, Title: "Types", Order: 2}).Error)

	env.q = model.Question{
		CourseID: env.course.ID, Content: "2+2?", Grade: 10, QuestionType: model.MultipleChoice, IsActive: true,
		Choices: []model.Choice{{Content: "4", IsCorrect: true}, {Content: "5"}},
	}
	require.NoError(t, db.Create(&env.q).Error)

	env.app = New(testConfig(t), db, nil)
	return env
}

func (e *testEnv) token(t *testing.T, userID uint, role model.UserRole) string {
	token, err := util.GenerateJWT(userID, role, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body *strings.Reader, contentType string) (*httptest.ResponseRecorder, util.Response) {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.app.Router.ServeHTTP(w, req)

	var resp util.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w, resp := env.do(t, http.MethodGet, "/api/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCourseCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/courses", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)

	w, resp = env.do(t, http.MethodGet, "/api/courses/search?q=", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)

	w, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", env.course.ID), "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/courses/9999", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/courses/abc", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	path := fmt.Sprintf("/api/courses/%d/enroll", env.course.ID)

	w, _ := env.do(t, http.MethodPost, path, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, path, "not-a-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEnrollSubmitAndResultFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.user.ID, model.Student)
	base := fmt.Sprintf("/api/courses/%d", env.course.ID)
	correct := env.q.Choices[0]

	form := url.Values{"choice_1": {fmt.Sprint(correct.ID)}}.Encode()

	// 未报名先提交：403 且不写入
	w, _ := env.do(t, http.MethodPost, base+"/submit", token, strings.NewReader(form), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = env.do(t, http.MethodPost, base+"/enroll", token, nil, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = env.do(t, http.MethodPost, base+"/enroll", token, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodPost, base+"/exam/start", token, nil, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w, resp := env.do(t, http.MethodPost, base+"/submit", token, strings.NewReader(form), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusCreated, w.Code)
	data := resp.Data.(map[string]interface{})
	result := data["result"].(map[string]interface{})
	assert.Equal(t, float64(100), result["grade"])
	assert.Equal(t, true, data["passed"])
	submissionID := uint(data["submission"].(map[string]interface{})["id"].(float64))

	w, resp = env.do(t, http.MethodGet, fmt.Sprintf("%s/submissions/%d", base, submissionID), token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	view := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(100), view["result"].(map[string]interface{})["grade"])

	w, _ = env.do(t, http.MethodPost, base+"/certificate", token, nil, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/my-courses", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	courses := resp.Data.([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, true, courses[0].(map[string]interface{})["completed"])
}

func TestLessonCompletionRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.user.ID, model.Student)
	base := fmt.Sprintf("/api/courses/%d", env.course.ID)

	var lessons []model.Lesson
	require.NoError(t, env.db.Where("course_id = ?", env.course.ID).Order("sort_order").Find(&lessons).Error)

	w, _ := env.do(t, http.MethodPost, fmt.Sprintf("%s/lessons/%d/complete", base, lessons[0].ID), token, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = env.do(t, http.MethodPost, base+"/enroll", token, nil, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := env.do(t, http.MethodPost, fmt.Sprintf("%s/lessons/%d/complete", base, lessons[0].ID), token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(50), resp.Data.(map[string]interface{})["progressPercentage"])

	w, _ = env.do(t, http.MethodPost, fmt.Sprintf("%s/lessons/%d/complete", base, 9999), token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodGet, base+"/progress", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.(map[string]interface{})["completedLessonIds"], 1)

	w, _ = env.do(t, http.MethodPost, base+"/certificate", token, nil, "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestInstructorRouteRequiresRole(t *testing.T) {
	env := newTestEnv(t)
	path := "/api/instructor/lessons/1/video"

	w, _ := env.do(t, http.MethodPost, path, env.token(t, env.user.ID, model.Student), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 角色通过后缺少文件
	w, _ = env.do(t, http.MethodPost, path, env.token(t, env.user.ID, model.Teacher), strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, path, env.token(t, env.user.ID, model.Admin), strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigCallbackUpdatesPassingGrade(t *testing.T) {
	env := newTestEnv(t)
	cfg := testConfig(t)
	cfg.Exam.PassingGrade = 60

	env.app.applyConfig(cfg)
	assert.Equal(t, 60, env.app.services.completion.PassingGrade())
}
