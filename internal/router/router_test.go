package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pomodoro/app/internal/db"
	"pomodoro/app/internal/engine"
	"pomodoro/app/internal/handler"
	"pomodoro/app/internal/middleware"
	"pomodoro/app/internal/repository"
	"pomodoro/app/internal/router"
	"pomodoro/app/internal/service"
)

const testToken = "e2e-test-token"

type stateEnvelope struct {
	State struct {
		Phase             string `json:"phase"`
		IsRunning         bool   `json:"isRunning"`
		RemainingSeconds  int64  `json:"remainingSeconds"`
		PhaseTotalSeconds int64  `json:"phaseTotalSeconds"`
		Interruptions     int64  `json:"interruptions"`
	} `json:"state"`
}

type sessionsEnvelope struct {
	Sessions []struct {
		Phase     string `json:"phase"`
		Completed bool   `json:"completed"`
		ProjectID *int64 `json:"projectId"`
	} `json:"sessions"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestTimerFlowAndHistory(t *testing.T) {
	server := setupTestServer(t, true)

	state := getState(t, server)
	if state.State.Phase != "focus" || state.State.IsRunning {
		t.Fatalf("expected idle focus phase, got %+v", state.State)
	}

	// Create a project and attach it before starting.
	status, projectRaw := requestJSON(t, server, http.MethodPost, "/api/projects", testToken, map[string]string{
		"name": "Deep Work",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 creating project, got %d: %s", status, string(projectRaw))
	}
	var projectResp struct {
		Project struct {
			ID int64 `json:"id"`
		} `json:"project"`
	}
	if err := json.Unmarshal(projectRaw, &projectResp); err != nil {
		t.Fatalf("unmarshal project response: %v", err)
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/context", testToken, map[string]interface{}{
		"projectId": projectResp.Project.ID,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 setting context, got %d", status)
	}

	status, startRaw := requestJSON(t, server, http.MethodPost, "/api/start", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d: %s", status, string(startRaw))
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/pause", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on pause, got %d", status)
	}

	// Pausing twice is an invalid transition.
	status, conflictRaw := requestJSON(t, server, http.MethodPost, "/api/pause", testToken, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on double pause, got %d", status)
	}
	var conflictResp errorEnvelope
	if err := json.Unmarshal(conflictRaw, &conflictResp); err != nil {
		t.Fatalf("unmarshal conflict response: %v", err)
	}
	if conflictResp.Error.Code != "invalid_transition" {
		t.Fatalf("expected invalid_transition, got %s", conflictResp.Error.Code)
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/resume", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on resume, got %d", status)
	}

	status, skipRaw := requestJSON(t, server, http.MethodPost, "/api/skip", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on skip, got %d", status)
	}
	var skipResp stateEnvelope
	if err := json.Unmarshal(skipRaw, &skipResp); err != nil {
		t.Fatalf("unmarshal skip response: %v", err)
	}
	if skipResp.State.Phase != "short_break" || skipResp.State.IsRunning {
		t.Fatalf("expected armed short break after skip, got %+v", skipResp.State)
	}

	// The skipped focus phase is in the history with its project.
	status, historyRaw := requestJSON(t, server, http.MethodGet, "/api/sessions", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for history, got %d", status)
	}
	var history sessionsEnvelope
	if err := json.Unmarshal(historyRaw, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history.Sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(history.Sessions))
	}
	session := history.Sessions[0]
	if session.Phase != "focus" || session.Completed {
		t.Fatalf("expected a skipped focus session, got %+v", session)
	}
	if session.ProjectID == nil || *session.ProjectID != projectResp.Project.ID {
		t.Fatalf("expected session linked to project %d, got %v", projectResp.Project.ID, session.ProjectID)
	}
}

func TestRemoteTokenRequired(t *testing.T) {
	server := setupTestServer(t, true)

	status, raw := requestJSON(t, server, http.MethodGet, "/api/state", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(raw, &errResp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if errResp.Error.Code != "unauthorized" {
		t.Fatalf("expected unauthorized, got %s", errResp.Error.Code)
	}

	status, _ = requestJSON(t, server, http.MethodGet, "/api/state", "wrong-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", status)
	}

	// The token may also arrive as a query parameter.
	status, _ = requestJSON(t, server, http.MethodGet, "/api/state?token="+testToken, "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 with query token, got %d", status)
	}
}

func TestRemoteControlDisabledHidesAPI(t *testing.T) {
	server := setupTestServer(t, false)

	status, _ := requestJSON(t, server, http.MethodGet, "/api/state", testToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 while remote control is disabled, got %d", status)
	}

	// Health and the remote page stay public.
	status, _ = requestJSON(t, server, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d", status)
	}
	status, _ = requestJSON(t, server, http.MethodGet, "/", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for remote page, got %d", status)
	}
}

func TestSettingsUpdateClampsAndSyncsTimer(t *testing.T) {
	server := setupTestServer(t, true)

	status, raw := requestJSON(t, server, http.MethodPut, "/api/settings", testToken, map[string]int{
		"focusMin": 999,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 updating settings, got %d: %s", status, string(raw))
	}

	var resp struct {
		Settings struct {
			FocusMin int64 `json:"focusMin"`
		} `json:"settings"`
		Timer struct {
			PhaseTotalSeconds int64 `json:"phaseTotalSeconds"`
		} `json:"timer"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal settings response: %v", err)
	}
	if resp.Settings.FocusMin != 180 {
		t.Fatalf("expected focusMin clamped to 180, got %d", resp.Settings.FocusMin)
	}
	// Idle timer picks up the new duration immediately.
	if resp.Timer.PhaseTotalSeconds != 180*60 {
		t.Fatalf("expected idle phase re-armed to %d, got %d", 180*60, resp.Timer.PhaseTotalSeconds)
	}
}

func TestExportCSVContainsSessions(t *testing.T) {
	server := setupTestServer(t, true)

	status, _ := requestJSON(t, server, http.MethodPost, "/api/start", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", status)
	}
	status, _ = requestJSON(t, server, http.MethodPost, "/api/skip", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on skip, got %d", status)
	}

	status, raw := requestJSON(t, server, http.MethodGet, "/api/export/csv", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for csv export, got %d", status)
	}

	var export struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(raw, &export); err != nil {
		t.Fatalf("unmarshal export response: %v", err)
	}
	if !strings.HasPrefix(export.Filename, "pomodoro-sessions-") {
		t.Fatalf("unexpected export filename: %s", export.Filename)
	}
	lines := strings.Split(strings.TrimSpace(export.Content), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,startedAt,endedAt,phase") {
		t.Fatalf("unexpected csv header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "focus") {
		t.Fatalf("expected focus row, got: %s", lines[1])
	}
}

func TestResetAllDisablesRemoteControl(t *testing.T) {
	server := setupTestServer(t, true)

	status, _ := requestJSON(t, server, http.MethodPost, "/api/start", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", status)
	}
	status, _ = requestJSON(t, server, http.MethodPost, "/api/skip", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on skip, got %d", status)
	}

	status, raw := requestJSON(t, server, http.MethodPost, "/api/reset", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on reset, got %d: %s", status, string(raw))
	}

	var resp struct {
		Timer struct {
			Phase     string `json:"phase"`
			IsRunning bool   `json:"isRunning"`
		} `json:"timer"`
		Settings struct {
			RemoteControlEnabled bool `json:"remoteControlEnabled"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal reset response: %v", err)
	}
	if resp.Timer.Phase != "focus" || resp.Timer.IsRunning {
		t.Fatalf("expected fresh idle focus timer, got %+v", resp.Timer)
	}
	if resp.Settings.RemoteControlEnabled {
		t.Fatal("expected remote control disabled after reset")
	}

	// Remote control went back to the default (off), so the API hides again.
	status, _ = requestJSON(t, server, http.MethodGet, "/api/state", testToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after reset, got %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupTestServer(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(recorder.Header().Get("Access-Control-Allow-Headers"), "X-Pomodoro-Token") {
		t.Fatalf("expected token header allowed, got: %s", recorder.Header().Get("Access-Control-Allow-Headers"))
	}
}

func setupTestServer(t *testing.T, remoteEnabled bool) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	settingsRepo := repository.NewSettingsRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	projectRepo := repository.NewProjectRepository(database)
	maintenanceRepo := repository.NewMaintenanceRepository(database)

	settingsService := service.NewSettingsService(settingsRepo)
	if err := settingsService.Init(context.Background()); err != nil {
		t.Fatalf("init settings: %v", err)
	}
	if remoteEnabled {
		enabled := true
		token := testToken
		if _, apiErr := settingsService.Update(context.Background(), service.SettingsPatch{
			RemoteControlEnabled: &enabled,
			RemoteControlToken:   &token,
		}); apiErr != nil {
			t.Fatalf("enable remote control: %v", apiErr)
		}
	}

	eng := engine.New(settingsService)
	store := service.NewStore(sessionRepo, settingsRepo)
	store.Attach(eng)

	timerService := service.NewTimerService(eng, sessionRepo, maintenanceRepo, settingsService)
	analyticsService := service.NewAnalyticsService(sessionRepo)
	exportService := service.NewExportService(sessionRepo, projectRepo, settingsService)
	projectService := service.NewProjectService(projectRepo)

	timerHandler := handler.NewTimerHandler(timerService)
	settingsHandler := handler.NewSettingsHandler(settingsService, timerService)
	projectHandler := handler.NewProjectHandler(projectService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, exportService)

	return router.New(settingsService, timerHandler, settingsHandler, projectHandler, analyticsHandler, []string{"http://localhost:5173"})
}

func getState(t *testing.T, server http.Handler) stateEnvelope {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodGet, "/api/state", testToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get state failed with status %d: %s", status, string(body))
	}
	var stateResp stateEnvelope
	if err := json.Unmarshal(body, &stateResp); err != nil {
		t.Fatalf("unmarshal state response: %v", err)
	}
	return stateResp
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
