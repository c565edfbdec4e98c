package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/mailer"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/storage/memory"
)

type captureMailer struct {
	tokens map[string]string
}

func (m *captureMailer) SendConfirmation(_ context.Context, msg mailer.Message) error {
	m.tokens[msg.To] = msg.Token
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, msg mailer.Message) error {
	m.tokens[msg.To] = msg.Token
	return nil
}

type app struct {
	t      *testing.T
	router *gin.Engine
	mail   *captureMailer
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	mail := &captureMailer{tokens: map[string]string{}}
	services := BuildServices(ServiceDeps{
		Users:     store.Users(),
		Projects:  store.Projects(),
		Tasks:     store.Tasks(),
		Mailer:    mail,
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
	r := BuildRouter(RouterDeps{
		ServiceName: "taskroom-test",
		Version:     "test",
		Services:    services,
		AuthLimit:   rate.Inf,
	})
	return &app{t: t, router: r, mail: mail}
}

func (a *app) do(method, path, token string, body any, headers ...string) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

// signup registers, confirms and logs a user in, returning id and token.
func (a *app) signup(name, email string) (string, string) {
	a.t.Helper()
	code, _ := a.do(http.MethodPost, "/api/v1/users", "", map[string]string{"name": name, "email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusCreated, code)

	code, _ = a.do(http.MethodGet, "/api/v1/users/confirm/"+a.mail.tokens[email], "", nil)
	require.Equal(a.t, http.StatusOK, code)

	code, body := a.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusOK, code)
	return body["id"].(string), body["token"].(string)
}

func (a *app) createProject(token string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/v1/projects", token, map[string]string{
		"name": "Launch", "description": "site launch", "client": "Acme",
	})
	require.Equal(a.t, http.StatusCreated, code)
	return body["project"].(map[string]any)["id"].(string)
}

func (a *app) createTask(token, projectID string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/v1/tasks", token, map[string]string{
		"name": "Draft copy", "description": "homepage", "priority": "High", "project": projectID,
	})
	require.Equal(a.t, http.StatusCreated, code)
	return body["task"].(map[string]any)["id"].(string)
}

func TestAccountLifecycle(t *testing.T) {
	a := newApp(t)

	id, token := a.signup("Cora", "cora@example.com")

	code, body := a.do(http.MethodGet, "/api/v1/users/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, body["id"])
	assert.NotContains(t, body, "password")

	code, body = a.do(http.MethodGet, "/api/v1/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["ok"])

	code, _ = a.do(http.MethodPost, "/api/v1/users", "", map[string]string{"name": "Cora", "email": "cora@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, "/api/v1/users", "", map[string]string{"name": "Eve", "email": "Eve <cora@example.com>", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = a.do(http.MethodPost, "/api/v1/users", "", map[string]string{"name": "Long", "email": "long@example.com", "password": strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", body["kind"])

	code, _ = a.do(http.MethodPost, "/api/v1/users/forgot-password", "", map[string]string{"email": "cora@example.com"})
	require.Equal(t, http.StatusOK, code)
	reset := a.mail.tokens["cora@example.com"]

	code, _ = a.do(http.MethodGet, "/api/v1/users/forgot-password/"+reset, "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/users/forgot-password/"+reset, "", map[string]string{"password": "brand-new"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": "cora@example.com", "password": "brand-new"})
	assert.Equal(t, http.StatusOK, code)
}

func TestCollaborationScenario(t *testing.T) {
	a := newApp(t)
	cID, cTok := a.signup("Cora", "cora@example.com")
	uID, uTok := a.signup("Uli", "uli@example.com")
	_, xTok := a.signup("Xan", "xan@example.com")

	p := a.createProject(cTok)

	code, body := a.do(http.MethodPost, "/api/v1/projects/collaborators", cTok, map[string]string{"email": "uli@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uID, body["user"].(map[string]any)["id"])

	code, body = a.do(http.MethodPost, "/api/v1/projects/collaborators", cTok, map[string]string{"email": "Uli <uli@example.com>"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", body["kind"])

	code, _ = a.do(http.MethodPost, "/api/v1/projects/collaborators/"+p, cTok, map[string]string{"email": "uli@example.com"})
	require.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodPost, "/api/v1/projects/collaborators/"+p, cTok, map[string]string{"email": "uli@example.com"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already a collaborator", body["error"])

	task := a.createTask(cTok, p)

	code, _ = a.do(http.MethodPost, "/api/v1/tasks", uTok, map[string]string{
		"name": "x", "description": "y", "priority": "Low", "project": p,
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.do(http.MethodPost, "/api/v1/tasks/state/"+task, uTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["task"].(map[string]any)["completed"])

	code, body = a.do(http.MethodPost, "/api/v1/tasks/state/"+task, cTok, nil)
	require.Equal(t, http.StatusOK, code)
	toggled := body["task"].(map[string]any)
	assert.Equal(t, false, toggled["completed"])
	assert.Equal(t, cID, toggled["completed_by"].(map[string]any)["id"])

	code, body = a.do(http.MethodGet, "/api/v1/projects/"+p, xTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
	assert.NotContains(t, body, "project")

	code, body = a.do(http.MethodGet, "/api/v1/projects/"+p, uTok, nil)
	require.Equal(t, http.StatusOK, code)
	project := body["project"].(map[string]any)
	assert.Len(t, project["tasks"], 1)
	assert.Len(t, project["collaborators"], 1)

	code, _ = a.do(http.MethodDelete, "/api/v1/tasks/"+task, cTok, nil)
	require.Equal(t, http.StatusOK, code)

	_, body = a.do(http.MethodGet, "/api/v1/projects/"+p, cTok, nil)
	assert.Empty(t, body["project"].(map[string]any)["tasks"])

	code, _ = a.do(http.MethodPost, "/api/v1/projects/remove-collaborator/"+p, cTok, map[string]string{"id": uID})
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodPost, "/api/v1/projects/remove-collaborator/"+p, cTok, map[string]string{"id": uID})
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodGet, "/api/v1/projects/"+p, uTok, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRealtimeFanOutFromHTTPMutation(t *testing.T) {
	a := newApp(t)
	_, cTok := a.signup("Cora", "cora@example.com")
	_, uTok := a.signup("Uli", "uli@example.com")
	p := a.createProject(cTok)
	code, _ := a.do(http.MethodPost, "/api/v1/projects/collaborators/"+p, cTok, map[string]string{"email": "uli@example.com"})
	require.Equal(t, http.StatusOK, code)

	srv := httptest.NewServer(a.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/realtime/ws"

	connect := func(token string) (*websocket.Conn, string) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
		require.NoError(t, err)
		var welcome map[string]any
		require.NoError(t, conn.ReadJSON(&welcome))
		require.NoError(t, conn.WriteJSON(map[string]string{"type": "join", "project": p}))
		var joined map[string]any
		require.NoError(t, conn.ReadJSON(&joined))
		require.Equal(t, "joined", joined["type"])
		return conn, welcome["connection_id"].(string)
	}

	creator, creatorConn := connect(cTok)
	defer creator.Close()
	viewer, _ := connect(uTok)
	defer viewer.Close()

	code, body := a.do(http.MethodPost, "/api/v1/tasks", cTok, map[string]string{
		"name": "Draft copy", "description": "homepage", "priority": "High", "project": p,
	}, "X-Connection-Id", creatorConn)
	require.Equal(t, http.StatusCreated, code)
	taskID := body["task"].(map[string]any)["id"].(string)

	require.NoError(t, viewer.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev map[string]any
	require.NoError(t, viewer.ReadJSON(&ev))
	assert.Equal(t, "task-created", ev["type"])
	assert.Equal(t, p, ev["project"])

	// Another user naming the creator's connection does not silence it.
	code, _ = a.do(http.MethodPost, "/api/v1/tasks/state/"+taskID, uTok, nil, "X-Connection-Id", creatorConn)
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, creator.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, creator.ReadJSON(&ev))
	assert.Equal(t, "task-completion-changed", ev["type"], "creator skipped its own task-created")

	require.NoError(t, viewer.ReadJSON(&ev))
	assert.Equal(t, "task-completion-changed", ev["type"])
}

func TestHealthReportsRealtime(t *testing.T) {
	a := newApp(t)

	code, body := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "disabled", body["db"])
	assert.Contains(t, body["realtime"], "connections")
}
