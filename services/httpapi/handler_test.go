package httpapi

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskops-controlplane/pkg/config"
	"taskops-controlplane/services/export"
	"taskops-controlplane/services/identity"
	"taskops-controlplane/services/kpi"
	"taskops-controlplane/services/task"
	"taskops-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.NewTestDB(t, &identity.Identity{}, &task.Task{}, &kpi.WeeklyKPIRecord{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	identitySvc := identity.NewService(identity.ServiceParams{DB: db, Node: node})
	require.NoError(t, identitySvc.Seed(context.Background()))

	taskSvc := task.NewService(task.ServiceParams{DB: db, Node: node, Roster: identitySvc})
	kpiSvc := kpi.NewService(kpi.ServiceParams{DB: db, Node: node, Tasks: taskSvc, Roster: identitySvc})
	exportSvc := export.NewService(export.ServiceParams{Tasks: taskSvc})

	h := NewHandler(HandlerParams{
		Identity: identitySvc,
		Tasks:    taskSvc,
		KPIs:     kpiSvc,
		Exports:  exportSvc,
	})
	return NewRouter(&config.Config{}, h)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, user, pass string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.SetBasicAuth(user, pass)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthz", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/v1/login", gin.H{"username": "julio.yroba", "password": "jefe123"}, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp identityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Julio Yroba", resp.DisplayName)
	require.Equal(t, identity.RoleOperator, resp.Role)

	w = do(t, r, http.MethodPost, "/v1/login", gin.H{"username": "julio.yroba", "password": "wrong"}, "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedRoutesRejectAnonymous(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/v1/tasks", nil, "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
}

func createTask(t *testing.T, r *gin.Engine, user, pass string) taskResponse {
	t.Helper()
	w := do(t, r, http.MethodPost, "/v1/tasks", gin.H{
		"description": "Fix invoice",
		"client":      "Acme",
		"targetDate":  "2099-01-05",
		"assignee":    "Julio Yroba",
	}, user, pass)
	require.Equal(t, http.StatusCreated, w.Code)

	var created taskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	created := createTask(t, r, "julio.yroba", "jefe123")
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Julio Yroba", created.Author)
	require.Equal(t, task.StatusPending, created.Status)

	// Assignee moves their own task.
	w := do(t, r, http.MethodPost, "/v1/tasks/"+created.ID+"/status", gin.H{"status": "in_progress"}, "julio.yroba", "jefe123")
	require.Equal(t, http.StatusNoContent, w.Code)

	// Another operator cannot.
	w = do(t, r, http.MethodPost, "/v1/tasks/"+created.ID+"/status", gin.H{"status": "done"}, "jose.quintero", "jefe123")
	require.Equal(t, http.StatusForbidden, w.Code)

	// Anyone may comment.
	w = do(t, r, http.MethodPost, "/v1/tasks/"+created.ID+"/comments", gin.H{"text": "waiting on Acme"}, "jose.quintero", "jefe123")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/v1/tasks", nil, "gerente.general", "admin123")
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Tasks []taskResponse `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Tasks, 1)
	require.Equal(t, task.StatusInProgress, listing.Tasks[0].Status)
	require.Len(t, listing.Tasks[0].Comments, 1)
	require.Equal(t, "José Quintero", listing.Tasks[0].Comments[0].Author)

	// Deletion is a manager call.
	w = do(t, r, http.MethodDelete, "/v1/tasks/"+created.ID, nil, "julio.yroba", "jefe123")
	require.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodDelete, "/v1/tasks/"+created.ID, nil, "gerente.proyectos", "gerente123")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateRejectsDoneAndBadPayload(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/v1/tasks", gin.H{
		"description": "Fix invoice",
		"client":      "Acme",
		"targetDate":  "2099-01-05",
		"status":      "done",
		"assignee":    "Julio Yroba",
	}, "julio.yroba", "jefe123")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/v1/tasks", gin.H{
		"description": "Fix invoice",
		"client":      "Acme",
		"targetDate":  "not-a-date",
		"assignee":    "Julio Yroba",
	}, "julio.yroba", "jefe123")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardShape(t *testing.T) {
	r := newTestRouter(t)
	createTask(t, r, "gerente.general", "admin123")

	w := do(t, r, http.MethodGet, "/v1/dashboard", nil, "gerente.general", "admin123")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Summary      task.WeekSummary    `json:"summary"`
		Availability []task.Availability `json:"availability"`
		Risks        []taskResponse      `json:"risks"`
		Backlog      []taskResponse      `json:"backlog"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Availability, 3)
	require.Empty(t, resp.Risks)
}

func TestKPIOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	submit := gin.H{
		"person":              "Julio Yroba",
		"weekStart":           "2026-08-24",
		"commendations":       3,
		"complaints":          0,
		"orderScore":          95,
		"clientResponseScore": 100,
	}

	// Operators may not submit.
	w := do(t, r, http.MethodPost, "/v1/kpi", submit, "julio.yroba", "jefe123")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/v1/kpi", submit, "gerente.general", "admin123")
	require.Equal(t, http.StatusCreated, w.Code)

	var record kpi.WeeklyKPIRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	require.InDelta(t, 100.0, record.ComplianceScore, 0.001)

	w = do(t, r, http.MethodGet, "/v1/kpi?person=Julio+Yroba", nil, "gerente.general", "admin123")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/v1/kpi/series?person=Julio+Yroba", nil, "gerente.general", "admin123")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/v1/kpi/series", nil, "gerente.general", "admin123")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	created := createTask(t, r, "gerente.general", "admin123")

	path := fmt.Sprintf("/v1/export/tasks.csv?start=%s&end=%s", created.TargetDate, created.TargetDate)
	w := do(t, r, http.MethodGet, path, nil, "gerente.general", "admin123")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "kpi_tasks.csv")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Fix invoice", records[1][0])

	w = do(t, r, http.MethodGet, "/v1/export/tasks.csv?start=bad&end=2099-01-05", nil, "gerente.general", "admin123")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
