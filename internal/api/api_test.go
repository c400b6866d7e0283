package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AssQ222/PDRPG/internal/config"
	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/metrics"
	"github.com/AssQ222/PDRPG/internal/storage"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *engine.Service) {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := func() time.Time { return testNow }
	m := metrics.New()
	svc := engine.NewService(db, engine.WithClock(now), engine.WithMetrics(m))

	cfg := config.Defaults()
	cfg.GinMode = gin.TestMode
	cfg.RateLimitPerMinute = 6000
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(svc, cfg, nil, m, WithClock(now)), svc
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Date    string          `json:"date"`
	Error   string          `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response
	if strings.HasPrefix(path, "/api") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w, _ := do(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "PDRPG API" || body["timestamp"] != "2026-03-10T15:00:00Z" {
		t.Fatalf("body=%v", body)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestTaskLifecycle(t *testing.T) {
	r, svc := newTestRouter(t, nil)

	w, resp := do(t, r, http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusOK || !resp.Success || resp.Count == nil || *resp.Count != 0 || string(resp.Data) != "[]" {
		t.Fatalf("empty list: code=%d resp=%+v", w.Code, resp)
	}

	w, resp = do(t, r, http.MethodPost, "/api/tasks", `{"title":"  Write report  "}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: code=%d body=%s", w.Code, w.Body.String())
	}
	var task storage.Task
	if err := json.Unmarshal(resp.Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task.Title != "Write report" || task.Completed {
		t.Fatalf("task=%+v", task)
	}

	w, resp = do(t, r, http.MethodPost, "/api/tasks/"+itoa(task.ID)+"/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: code=%d body=%s", w.Code, w.Body.String())
	}
	var toggled engine.ToggleResult
	if err := json.Unmarshal(resp.Data, &toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if !toggled.Task.Completed || !toggled.RewardApplied {
		t.Fatalf("toggle=%+v", toggled)
	}

	c, err := svc.GetCharacter(context.Background())
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	if want := engine.TaskReward("Write report", false).Exp; c.Experience != want {
		t.Fatalf("experience=%d, want %d", c.Experience, want)
	}

	w, _ = do(t, r, http.MethodDelete, "/api/tasks/"+itoa(task.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: code=%d", w.Code)
	}
	w, resp = do(t, r, http.MethodDelete, "/api/tasks/"+itoa(task.ID), "")
	if w.Code != http.StatusNotFound || resp.Success || resp.Error == "" {
		t.Fatalf("second delete: code=%d resp=%+v", w.Code, resp)
	}
}

func TestErrorMapping(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/tasks", `{"title":"   "}`, http.StatusBadRequest},
		{http.MethodPost, "/api/tasks", `{"title":`, http.StatusBadRequest},
		{http.MethodPost, "/api/tasks/abc/toggle", "", http.StatusBadRequest},
		{http.MethodPost, "/api/tasks/99/toggle", "", http.StatusNotFound},
		{http.MethodGet, "/api/quests?status=Bogus", "", http.StatusBadRequest},
		{http.MethodGet, "/api/entries/10-03-2026", "", http.StatusBadRequest},
		{http.MethodPost, "/api/achievements/42/earn", "", http.StatusNotFound},
		{http.MethodGet, "/api/nothing", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		w, resp := do(t, r, tc.method, tc.path, tc.body)
		if w.Code != tc.want || resp.Success {
			t.Fatalf("%s %s: code=%d want %d body=%s", tc.method, tc.path, w.Code, tc.want, w.Body.String())
		}
	}
}

func TestHabitsToday(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w, resp := do(t, r, http.MethodPost, "/api/habits", `{"title":"Pushups","habit_type":"Counter","target_value":20}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create habit: code=%d body=%s", w.Code, w.Body.String())
	}
	var habit storage.Habit
	if err := json.Unmarshal(resp.Data, &habit); err != nil {
		t.Fatalf("decode habit: %v", err)
	}

	w, _ = do(t, r, http.MethodPost, "/api/habits/"+itoa(habit.ID)+"/entries", `{"value":25}`)
	if w.Code != http.StatusOK {
		t.Fatalf("log entry: code=%d body=%s", w.Code, w.Body.String())
	}

	w, resp = do(t, r, http.MethodGet, "/api/habits", "")
	if w.Code != http.StatusOK || resp.Date != "2026-03-10" || resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("today: code=%d resp=%+v", w.Code, resp)
	}
	var items []engine.HabitToday
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("decode today: %v", err)
	}
	if !items[0].TodayCompleted || items[0].TodayEntry == nil || items[0].TodayEntry.Value != 25 {
		t.Fatalf("today=%+v", items[0])
	}
	if items[0].Habit.CurrentStreak != 1 {
		t.Fatalf("streak=%d, want 1", items[0].Habit.CurrentStreak)
	}

	w, resp = do(t, r, http.MethodGet, "/api/entries/2026-03-10", "")
	if w.Code != http.StatusOK || resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("entries for date: code=%d resp=%+v", w.Code, resp)
	}
}

func TestCharacterIncludesLevelProgress(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w, resp := do(t, r, http.MethodGet, "/api/character", "")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var data struct {
		Character     storage.Character        `json:"character"`
		LevelProgress engine.LevelProgressView `json:"level_progress"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Character.Level != 1 || data.Character.Class != "Warrior" {
		t.Fatalf("character=%+v", data.Character)
	}
	if data.LevelProgress.NextLevelExp != 100 || data.LevelProgress.ExpToNextLevel != 100 {
		t.Fatalf("progress=%+v", data.LevelProgress)
	}
}

func TestQuestEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w, resp := do(t, r, http.MethodPost, "/api/quests/generate", "")
	if w.Code != http.StatusOK || resp.Count == nil || *resp.Count == 0 {
		t.Fatalf("generate: code=%d body=%s", w.Code, w.Body.String())
	}
	generated := *resp.Count

	_, resp = do(t, r, http.MethodGet, "/api/quests/active", "")
	if resp.Count == nil || *resp.Count != generated {
		t.Fatalf("active count=%v, want %d", resp.Count, generated)
	}

	_, resp = do(t, r, http.MethodGet, "/api/quests?week=2026-11&status=active", "")
	if resp.Count == nil || *resp.Count != generated {
		t.Fatalf("filtered count=%v, want %d", resp.Count, generated)
	}

	w, _ = do(t, r, http.MethodPost, "/api/quests/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAchievementEndpoints(t *testing.T) {
	r, svc := newTestRouter(t, nil)
	if _, err := svc.SeedDefaultAchievements(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, resp := do(t, r, http.MethodGet, "/api/achievements?status=locked", "")
	if resp.Count == nil || *resp.Count != 13 {
		t.Fatalf("locked count=%v", resp.Count)
	}

	w, resp := do(t, r, http.MethodGet, "/api/achievements/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats: code=%d", w.Code)
	}
	var stats engine.AchievementStats
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 13 || stats.Locked != 13 {
		t.Fatalf("stats=%+v", stats)
	}

	w, _ = do(t, r, http.MethodPost, "/api/achievements/check", "")
	if w.Code != http.StatusOK {
		t.Fatalf("check: code=%d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	r, _ := newTestRouter(t, func(c *config.Config) { c.RateLimitPerMinute = 2 })

	w, _ := do(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("first request: code=%d", w.Code)
	}
	w, resp := do(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusTooManyRequests || resp.Error != "rate limit exceeded" {
		t.Fatalf("second request: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for origin, want := range map[string]string{
		"tauri://localhost":     "tauri://localhost",
		"http://localhost:1420": "http://localhost:1420",
		"http://evil.example":   "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != want {
			t.Fatalf("origin %s: allow-origin=%q, want %q", origin, got, want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	do(t, r, http.MethodGet, "/api/health", "")

	w, _ := do(t, r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pdrpg_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	const id = "3f2a4c1e-9b7d-4e1a-8c2f-5d6e7f809a1b"

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != id {
		t.Fatalf("request id=%q, want %q", got, id)
	}
}

func TestListenRejectsNonLoopback(t *testing.T) {
	if _, err := Listen("0.0.0.0:0", http.NotFoundHandler(), nil); err == nil {
		t.Fatalf("expected error for wildcard host")
	}
	if err := checkLoopback("localhost:3030"); err != nil {
		t.Fatalf("localhost rejected: %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	s, err := Listen("127.0.0.1:0", http.NotFoundHandler(), nil)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
