package v1

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/taskboard/internal/models"
	"github.com/adanyl0v/taskboard/internal/services"
	"github.com/adanyl0v/taskboard/internal/tracking"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"

	// Fingerprint of an httptest request without a User-Agent.
	testFingerprint = `{"client_ip":"192.0.2.1","user_agent":""}`
)

type fakeAuth struct {
	services.AuthService
}

func (fakeAuth) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	switch token {
	case adminToken:
		return &jwt.RegisteredClaims{Subject: "admin-session"}, nil
	case userToken:
		return &jwt.RegisteredClaims{Subject: "user-session"}, nil
	}
	return nil, jwt.ErrTokenMalformed
}

type fakeSessions struct{}

func (fakeSessions) GetSessionByID(_ context.Context, sessionID string) (*models.Session, error) {
	switch sessionID {
	case "admin-session":
		return &models.Session{ID: sessionID, UserID: "admin", Fingerprint: testFingerprint, IsAdmin: true}, nil
	case "user-session":
		return &models.Session{ID: sessionID, UserID: "u1", Fingerprint: testFingerprint}, nil
	}
	return nil, services.ErrSessionNotFound
}

type fakeUsers struct {
	services.UserService
}

func (fakeUsers) GetTeamList(context.Context) ([]models.User, error) {
	return []models.User{{ID: "u1", Name: "Alice", IsActive: true}}, nil
}

type fakeTasks struct {
	services.TaskService

	tasks      []models.Task
	err        error
	lastFilter services.TaskFilter
	created    services.CreateTaskParams
	trash      services.DeleteRestoreParams
}

func (f *fakeTasks) GetTasks(_ context.Context, filter services.TaskFilter) ([]models.Task, error) {
	f.lastFilter = filter
	return f.tasks, f.err
}

func (f *fakeTasks) GetTask(_ context.Context, taskID string) (*models.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			return &f.tasks[i], nil
		}
	}
	return nil, services.ErrTaskNotFound
}

func (f *fakeTasks) CreateTask(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
	f.created = params
	return &models.Task{
		ID:       "new",
		Title:    params.Title,
		Date:     params.Date,
		Priority: models.PriorityNormal,
		Stage:    models.StageTodo,
	}, nil
}

func (f *fakeTasks) DeleteRestoreTask(_ context.Context, params services.DeleteRestoreParams) error {
	f.trash = params
	return f.err
}

func (f *fakeTasks) PostActivity(_ context.Context, params services.PostActivityParams) (*models.Activity, error) {
	if !params.Type.Valid() {
		return nil, services.ErrInvalidActivityType
	}
	return &models.Activity{
		ID:    "a1",
		Type:  params.Type,
		Text:  params.Text,
		Actor: models.UserRef{ID: params.ActorID},
	}, nil
}

type fakeNotices struct {
	marked services.MarkNoticesReadParams
}

func (f *fakeNotices) GetNotices(context.Context, string) ([]models.Notice, error) {
	return []models.Notice{{ID: "n1", Text: "hi", Type: models.NoticeTypeAlert}}, nil
}

func (f *fakeNotices) MarkNoticesRead(_ context.Context, params services.MarkNoticesReadParams) error {
	f.marked = params
	return nil
}

func sampleTasks() []models.Task {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	return []models.Task{
		{
			ID:       "t1",
			Title:    "Landing page",
			Date:     start,
			Priority: models.PriorityHigh,
			Stage:    models.StageInProgress,
			Team:     []models.UserRef{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}},
			Activities: []models.Activity{
				{ID: "a1", Type: models.ActivityStarted, Text: "layout", Timestamp: start, Actor: models.UserRef{ID: "u1"}},
				{ID: "a2", Type: models.ActivityCompleted, Timestamp: start.Add(90 * time.Minute), Actor: models.UserRef{ID: "u1"}},
			},
		},
		{ID: "t2", Title: "Hidden", Date: start, Priority: models.PriorityLow, Stage: models.StageTodo},
	}
}

type testEnv struct {
	router  *gin.Engine
	tasks   *fakeTasks
	notices *fakeNotices
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tasks := &fakeTasks{tasks: sampleTasks()}
	notices := &fakeNotices{}
	h := New(
		zerolog.Nop(),
		fakeAuth{},
		fakeSessions{},
		fakeUsers{},
		tasks,
		services.NewReportService(zerolog.Nop(), tasks, time.UTC),
		notices,
	)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), h)
	return &testEnv{router: router, tasks: tasks, notices: notices}
}

func (e *testEnv) do(method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/v1/tasks", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/v1/users/team", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Alice"`)
}

func TestAuthMiddlewareFingerprintMismatch(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	req.Header.Set("User-Agent", "curl/8.0")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	env := newTestEnv(t)
	body := `{"title": "New", "date": "2024-03-04T09:00:00Z", "team": ["u1"]}`

	w := env.do(http.MethodPost, "/api/v1/tasks", userToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error": "admin access required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/tasks", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin", env.tasks.created.CreatorID)
	assert.Equal(t, []string{"u1"}, env.tasks.created.TeamIDs)

	var resp taskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "New", resp.Title)
	assert.Equal(t, "normal", resp.Priority)
	assert.Empty(t, resp.Activities)
}

func TestCreateTaskRejectsInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/tasks", adminToken, `{"date": "2024-03-04T09:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTasksFilter(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/tasks?stage=todo&user_id=u2", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.TaskFilter{Stage: models.StageTodo, UserID: "u1"}, env.tasks.lastFilter)

	w = env.do(http.MethodGet, "/api/v1/tasks?trashed=true&user_id=u2", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.TaskFilter{Trashed: true, UserID: "u2"}, env.tasks.lastFilter)

	var resp []taskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "in progress", resp[0].Stage)
	assert.Len(t, resp[0].Team, 2)

	w = env.do(http.MethodGet, "/api/v1/tasks?trashed=maybe", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTask(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/tasks/t1", userToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// u1 is not on the team of t2.
	w = env.do(http.MethodGet, "/api/v1/tasks/t2", userToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/v1/tasks/t2", adminToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/tasks/missing", adminToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRestoreTask(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/api/v1/tasks/trash?action=restore&id=t1", adminToken, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, services.DeleteRestoreParams{ID: "t1", Action: services.TrashActionRestore}, env.tasks.trash)

	w = env.do(http.MethodDelete, "/api/v1/tasks/trash", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.tasks.err = services.ErrInvalidTrashAction
	w = env.do(http.MethodDelete, "/api/v1/tasks/trash?action=explode", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostActivity(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/tasks/t1/activities", userToken, `{"type": "started", "activity": "go"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp activityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Type)
	assert.Equal(t, "u1", resp.By.ID)

	w = env.do(http.MethodPost, "/api/v1/tasks/t1/activities", userToken, `{"type": "paused"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskReport(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/tasks/report?user_id=u1", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, "Alice", resp.Tasks[0].Applicant)
	assert.Equal(t, "1h 30m", resp.Tasks[0].Duration)
	assert.Equal(t, int64(90*time.Minute/time.Millisecond), resp.Tasks[0].DurationMs)
	assert.Equal(t, "No team", resp.Tasks[1].Applicant)

	assert.Equal(t, 2, resp.Summary.TaskCount)
	assert.Equal(t, "1h 30m", resp.Summary.TotalDuration)
	require.Len(t, resp.Summary.CountsByWeekday, 7)
	assert.Equal(t, weekdayCountResponse{Day: "Sunday", Count: 0}, resp.Summary.CountsByWeekday[0])
	assert.Equal(t, weekdayCountResponse{Day: "Monday", Count: 2}, resp.Summary.CountsByWeekday[1])
}

func TestTaskReportMalformed(t *testing.T) {
	env := newTestEnv(t)
	env.tasks.tasks[0].Activities[0].Timestamp = time.Time{}

	w := env.do(http.MethodGet, "/api/v1/tasks/report", adminToken, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExportReport(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/tasks/report/export", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []rowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "layout", rows[0].Order)
	assert.Equal(t, "2024-03-04 09:00", rows[0].Timestamp)
	assert.Equal(t, tracking.TotalRowLabel, rows[1].Order)

	w = env.do(http.MethodGet, "/api/v1/tasks/report/export?format=csv", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, tracking.Header(), records[0])
	assert.Equal(t, "Alice, Bob", records[1][0])

	w = env.do(http.MethodGet, "/api/v1/tasks/report/export?format=pdf", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotices(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/notices", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notice_type":"alert"`)

	w = env.do(http.MethodPut, "/api/v1/notices/read?id=n1", userToken, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, services.MarkNoticesReadParams{UserID: "u1", NoticeID: "n1"}, env.notices.marked)
}
