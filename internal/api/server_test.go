package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/migrations"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/testutil"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/audit"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/config"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "test-secret"
	testIssuer = "swhouse-test"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	bus    *events.Bus
	admin  *user.User
	dev    *user.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t, migrations.Models()...)
	cfg := &config.Config{
		Auth:       config.AuthConfig{JWTSecret: testSecret, JWTIssuer: testIssuer},
		Commission: config.CommissionConfig{Timezone: "UTC"},
	}
	bus := events.NewBus(64, zap.NewNop())

	router, err := NewRouter(Deps{
		Config: cfg,
		DB:     db,
		Bus:    bus,
		Audit:  audit.Discard(),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	users := user.NewRepository(db)
	admin := &user.User{Email: "admin@house.dev", Name: "Admin", Role: user.RoleAdmin, CommissionAccess: user.CommissionAccessAllEdit}
	dev := &user.User{Email: "dev@house.dev", Name: "Dev", Role: user.RoleTeam, CommissionAccess: user.CommissionAccessOwnRead}
	require.NoError(t, users.Create(context.Background(), admin))
	require.NoError(t, users.Create(context.Background(), dev))

	return &testServer{t: t, router: router, bus: bus, admin: admin, dev: dev}
}

type envelope struct {
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func (s *testServer) do(as *user.User, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := auth.GenerateToken(as.ID, string(as.Role), testSecret, testIssuer, time.Hour)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) decode(env envelope, v interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(env.Data, v))
}

type idBody struct {
	ID       uuid.UUID  `json:"id"`
	Order    int        `json:"order"`
	SprintID *uuid.UUID `json:"sprintId"`
	Title    string     `json:"title"`
}

func (s *testServer) createProject(name string) uuid.UUID {
	s.t.Helper()
	w, env := s.do(s.admin, http.MethodPost, "/api/projects", gin.H{"name": name})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var p idBody
	s.decode(env, &p)
	return p.ID
}

func (s *testServer) createSprint(name string, projectIDs ...uuid.UUID) uuid.UUID {
	s.t.Helper()
	w, env := s.do(s.admin, http.MethodPost, "/api/sprints", gin.H{
		"name":       name,
		"startDate":  "2024-03-01T00:00:00Z",
		"endDate":    "2024-03-14T00:00:00Z",
		"projectIds": projectIDs,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var sp idBody
	s.decode(env, &sp)
	return sp.ID
}

func (s *testServer) createTask(body gin.H) idBody {
	s.t.Helper()
	w, env := s.do(s.admin, http.MethodPost, "/api/tasks", body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var tk idBody
	s.decode(env, &tk)
	return tk
}

func (s *testServer) list(path string) []idBody {
	s.t.Helper()
	w, env := s.do(s.admin, http.MethodGet, path, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out []idBody
	s.decode(env, &out)
	return out
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/health/cache"} {
		w, _ := s.do(nil, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w, _ := s.do(nil, http.MethodGet, "/health/cache", nil)
	assert.Contains(t, w.Body.String(), `"disabled"`)
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(nil, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMoveTaskBetweenPartitions(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject("Website")
	sprintID := s.createSprint("Sprint 1", projectID)

	a := s.createTask(gin.H{"title": "A", "projectId": projectID})
	b := s.createTask(gin.H{"title": "B", "projectId": projectID})
	c := s.createTask(gin.H{"title": "C", "projectId": projectID})
	x := s.createTask(gin.H{"title": "X", "projectId": projectID, "sprintId": sprintID})
	y := s.createTask(gin.H{"title": "Y", "projectId": projectID, "sprintId": sprintID})
	assert.Equal(t, 2, c.Order)
	assert.Equal(t, 1, y.Order)

	w, env := s.do(s.admin, http.MethodPost, "/api/tasks/move", gin.H{
		"taskId":              b.ID,
		"sourceSprintId":      nil,
		"destinationSprintId": sprintID,
		"destinationIndex":    1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var moved idBody
	s.decode(env, &moved)
	assert.Equal(t, 1, moved.Order)
	require.NotNil(t, moved.SprintID)
	assert.Equal(t, sprintID, *moved.SprintID)

	backlog := s.list("/api/backlog?projectId=" + projectID.String())
	require.Len(t, backlog, 2)
	assert.Equal(t, []uuid.UUID{a.ID, c.ID}, []uuid.UUID{backlog[0].ID, backlog[1].ID})
	assert.Equal(t, []int{0, 1}, []int{backlog[0].Order, backlog[1].Order})

	sprintTasks := s.list("/api/sprints/" + sprintID.String() + "/tasks?projectId=" + projectID.String())
	require.Len(t, sprintTasks, 3)
	assert.Equal(t, []uuid.UUID{x.ID, b.ID, y.ID}, []uuid.UUID{sprintTasks[0].ID, sprintTasks[1].ID, sprintTasks[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{sprintTasks[0].Order, sprintTasks[1].Order, sprintTasks[2].Order})

	sprintBacklog := s.list("/api/sprints/" + sprintID.String() + "/backlog")
	assert.Len(t, sprintBacklog, 2)
}

func TestMoveTaskValidation(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(s.admin, http.MethodPost, "/api/tasks/move", gin.H{"taskId": uuid.New()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "destinationIndex")

	w, env = s.do(s.admin, http.MethodPost, "/api/tasks/move", gin.H{"destinationIndex": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "taskId")

	w, _ = s.do(s.admin, http.MethodPost, "/api/tasks/move", gin.H{"taskId": uuid.New(), "destinationIndex": 0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTaskErrors(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(s.admin, http.MethodPost, "/api/tasks", gin.H{"projectId": uuid.New()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "title")

	w, _ = s.do(s.admin, http.MethodPost, "/api/tasks", gin.H{"title": "Orphan", "projectId": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(s.admin, http.MethodGet, "/api/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTaskResequences(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject("Website")
	a := s.createTask(gin.H{"title": "A", "projectId": projectID})
	b := s.createTask(gin.H{"title": "B", "projectId": projectID})
	c := s.createTask(gin.H{"title": "C", "projectId": projectID})

	w, _ := s.do(s.admin, http.MethodDelete, "/api/tasks/"+b.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	backlog := s.list("/api/backlog?projectId=" + projectID.String())
	require.Len(t, backlog, 2)
	assert.Equal(t, a.ID, backlog[0].ID)
	assert.Equal(t, c.ID, backlog[1].ID)
	assert.Equal(t, 1, backlog[1].Order)

	w, _ = s.do(s.admin, http.MethodGet, "/api/tasks/"+b.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimerEndpoints(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject("Website")
	tk := s.createTask(gin.H{"title": "Timed", "projectId": projectID})
	base := "/api/tasks/" + tk.ID.String()

	w, env := s.do(s.dev, http.MethodPost, base+"/start-timer", gin.H{"userId": s.dev.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry struct {
		ID       uuid.UUID `json:"id"`
		IsActive bool      `json:"isActive"`
	}
	s.decode(env, &entry)
	assert.True(t, entry.IsActive)

	w, _ = s.do(s.dev, http.MethodPost, base+"/start-timer", gin.H{"userId": s.dev.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(s.dev, http.MethodPost, base+"/start-timer", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(s.dev, http.MethodGet, base+"/active-timer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), entry.ID.String())

	w, env = s.do(s.dev, http.MethodPost, base+"/pause-timer", gin.H{"entryId": entry.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stopped struct {
		Entry struct {
			Duration *int64 `json:"duration"`
			IsActive bool   `json:"isActive"`
		} `json:"entry"`
		Task struct {
			ActualMinutes *int `json:"actualMinutes"`
		} `json:"task"`
	}
	s.decode(env, &stopped)
	assert.False(t, stopped.Entry.IsActive)
	require.NotNil(t, stopped.Entry.Duration)
	require.NotNil(t, stopped.Task.ActualMinutes)
	assert.Equal(t, 0, *stopped.Task.ActualMinutes)

	w, _ = s.do(s.dev, http.MethodPost, base+"/stop-timer", gin.H{"entryId": entry.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(s.dev, http.MethodGet, base+"/active-timer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", string(env.Data))

	w, env = s.do(s.dev, http.MethodGet, base+"/time-entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []json.RawMessage
	s.decode(env, &entries)
	assert.Len(t, entries, 1)

	w, env = s.do(s.dev, http.MethodGet, base+"/time-summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		ClosedEntries int `json:"closedEntries"`
	}
	s.decode(env, &summary)
	assert.Equal(t, 1, summary.ClosedEntries)
}

func TestCommissionEndpoints(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject("Website")

	w, _ := s.do(s.admin, http.MethodPut, "/api/commissions/"+s.dev.ID.String(), gin.H{
		"hasFixedSalary": true,
		"fixedSalary":    1000,
		"hourRate":       50,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tk := s.createTask(gin.H{"title": "Feature", "projectId": projectID, "assigneeId": s.dev.ID, "estimatedMinutes": 120})
	w, _ = s.do(s.admin, http.MethodPatch, "/api/tasks/"+tk.ID.String()+"/status", gin.H{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := s.do(s.dev, http.MethodGet, "/api/commissions/"+s.dev.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var statement struct {
		MinutesCompleted int     `json:"minutesCompleted"`
		VariablePay      float64 `json:"variablePay"`
		FixedSalary      float64 `json:"fixedSalary"`
		TotalPay         float64 `json:"totalPay"`
	}
	s.decode(env, &statement)
	assert.Equal(t, 120, statement.MinutesCompleted)
	assert.Equal(t, 100.0, statement.VariablePay)
	assert.Equal(t, 1000.0, statement.FixedSalary)
	assert.Equal(t, 1100.0, statement.TotalPay)

	// A range that excludes today drops the task.
	w, env = s.do(s.dev, http.MethodGet, "/api/commissions/"+s.dev.ID.String()+"?from=2000-01-01&to=2000-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.decode(env, &statement)
	assert.Equal(t, 0, statement.MinutesCompleted)
	assert.Equal(t, 1000.0, statement.TotalPay)

	w, _ = s.do(s.dev, http.MethodGet, "/api/commissions/"+s.admin.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(s.dev, http.MethodPut, "/api/commissions/"+s.dev.ID.String(), gin.H{"hourRate": 500})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(s.admin, http.MethodPut, "/api/commissions/"+s.dev.ID.String(), gin.H{"hourRate": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "hourRate")

	w, _ = s.do(s.dev, http.MethodGet, "/api/commissions?from=2024-13-01&to=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(s.dev, http.MethodGet, "/api/commissions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var own []json.RawMessage
	s.decode(env, &own)
	assert.Len(t, own, 1)

	w, env = s.do(s.admin, http.MethodGet, "/api/commissions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []json.RawMessage
	s.decode(env, &all)
	assert.Len(t, all, 2)
}

func TestAdminOnlyUserRoutes(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(s.dev, http.MethodPost, "/api/users", gin.H{"email": "new@house.dev", "name": "New"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(s.admin, http.MethodPost, "/api/users", gin.H{"email": "new@house.dev", "name": "New"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(s.dev, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), s.dev.Email)
}

func TestMovePublishesToProjectTopic(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject("Website")
	a := s.createTask(gin.H{"title": "A", "projectId": projectID})
	s.createTask(gin.H{"title": "B", "projectId": projectID})

	ch, cancel := s.bus.Subscribe(events.ProjectTopic(projectID))
	defer cancel()

	w, _ := s.do(s.admin, http.MethodPost, "/api/tasks/move", gin.H{"taskId": a.ID, "destinationIndex": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	select {
	case ev := <-ch:
		assert.Equal(t, events.EventTypeTaskMoved, ev.Type)
		require.NotNil(t, ev.TaskID)
		assert.Equal(t, a.ID, *ev.TaskID)
	case <-time.After(time.Second):
		t.Fatal("no task.moved event delivered")
	}
}
