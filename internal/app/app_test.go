package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eduverse_backend/internal/config"
	"eduverse_backend/pkg/database"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:app_%d?mode=memory&cache=shared", time.Now().UnixNano()), false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite"},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir(), MaxUploadMB: 5},
		Lock:      config.LockConfig{Timeout: 5 * time.Second},
		Events:    config.EventsConfig{Driver: "gochannel", Topic: "eduverse.test"},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}
	a, err := newApp(cfg, db, nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func call(t *testing.T, a *App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func mustCreate(t *testing.T, a *App, path string, body interface{}) string {
	t.Helper()
	code, env := call(t, a, http.MethodPost, path, body)
	if code != http.StatusCreated {
		t.Fatalf("POST %s status = %d (%s), want 201", path, code, env.Message)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.ID == "" {
		t.Fatalf("POST %s: missing id in %s", path, env.Data)
	}
	return out.ID
}

func TestHealthMetricsAndDocs(t *testing.T) {
	a := newTestApp(t)

	if code, _ := call(t, a, http.MethodGet, "/api/health", nil); code != http.StatusOK {
		t.Fatalf("health status = %d", code)
	}

	for _, path := range []string{"/metrics", "/swagger/doc.json"} {
		w := httptest.NewRecorder()
		a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, w.Code)
		}
	}
}

func TestCourseProgressFlow(t *testing.T) {
	a := newTestApp(t)

	instructor := mustCreate(t, a, "/api/users", map[string]string{"name": "Ruth", "email": "ruth@example.com", "role": "instructor"})
	student := mustCreate(t, a, "/api/users", map[string]string{"name": "Eli", "email": "eli@example.com", "role": "student"})
	course := mustCreate(t, a, "/api/courses", map[string]string{"title": "Foundations", "instructorId": instructor})
	m1 := mustCreate(t, a, "/api/courses/"+course+"/modules", map[string]string{"title": "One"})
	m2 := mustCreate(t, a, "/api/courses/"+course+"/modules", map[string]string{"title": "Two"})

	if code, _ := call(t, a, http.MethodPost, "/api/courses/"+course+"/enroll", map[string]string{"studentId": student}); code != http.StatusCreated {
		t.Fatalf("first enroll status = %d, want 201", code)
	}
	if code, _ := call(t, a, http.MethodPost, "/api/courses/"+course+"/enroll", map[string]string{"studentId": student}); code != http.StatusOK {
		t.Fatalf("second enroll status = %d, want 200", code)
	}

	type toggle struct {
		Progress        int      `json:"progress"`
		CourseCompleted bool     `json:"courseCompleted"`
		AwardedBadges   []string `json:"awardedBadges"`
	}
	steps := []struct {
		module    string
		progress  int
		completed bool
		badge     string
	}{
		{m1, 50, false, "b1"},
		{m2, 100, true, "b3"},
	}
	for _, step := range steps {
		code, env := call(t, a, http.MethodPost, "/api/courses/"+course+"/modules/"+step.module+"/toggle", map[string]string{"userId": student})
		if code != http.StatusOK {
			t.Fatalf("toggle status = %d (%s)", code, env.Message)
		}
		var res toggle
		if err := json.Unmarshal(env.Data, &res); err != nil {
			t.Fatalf("decode toggle: %v", err)
		}
		if res.Progress != step.progress || res.CourseCompleted != step.completed {
			t.Fatalf("toggle %s = %+v, want progress %d completed %v", step.module, res, step.progress, step.completed)
		}
		found := false
		for _, b := range res.AwardedBadges {
			if b == step.badge {
				found = true
			}
		}
		if !found {
			t.Fatalf("toggle %s awarded %v, want %s", step.module, res.AwardedBadges, step.badge)
		}
	}

	code, env := call(t, a, http.MethodGet, "/api/courses/"+course+"/enrollments", nil)
	if code != http.StatusOK {
		t.Fatalf("enrollments status = %d", code)
	}
	var rows []struct {
		StudentID string `json:"studentId"`
		Progress  int    `json:"progress"`
	}
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || rows[0].StudentID != student || rows[0].Progress != 100 {
		t.Fatalf("enrollment rows = %+v", rows)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/courses/"+course+"/progress/export", nil))
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("export status = %d, size %d", w.Code, w.Body.Len())
	}
}

func TestResourceReorderFlow(t *testing.T) {
	a := newTestApp(t)

	instructor := mustCreate(t, a, "/api/users", map[string]string{"name": "Ada", "email": "ada@example.com", "role": "instructor"})
	course := mustCreate(t, a, "/api/courses", map[string]string{"title": "Psalms", "instructorId": instructor})
	module := mustCreate(t, a, "/api/courses/"+course+"/modules", map[string]string{"title": "Intro"})

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		ids = append(ids, mustCreate(t, a, "/api/modules/"+module+"/resources", map[string]string{
			"title": title, "type": "link", "url": "https://example.com/" + title,
		}))
	}

	reorder := map[string]interface{}{"resourceOrders": []map[string]interface{}{
		{"id": ids[0], "order": 3},
		{"id": ids[1], "order": 2},
		{"id": ids[2], "order": 1},
	}}
	code, env := call(t, a, http.MethodPut, "/api/modules/"+module+"/resources/reorder", reorder)
	if code != http.StatusOK {
		t.Fatalf("reorder status = %d (%s)", code, env.Message)
	}

	_, env = call(t, a, http.MethodGet, "/api/modules/"+module+"/resources", nil)
	var list []struct {
		Title string `json:"title"`
		Order int    `json:"order"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	want := []string{"C", "B", "A"}
	if len(list) != len(want) {
		t.Fatalf("list = %+v", list)
	}
	for i, r := range list {
		if r.Title != want[i] || r.Order != i+1 {
			t.Fatalf("list[%d] = %+v, want %s at %d", i, r, want[i], i+1)
		}
	}

	duplicate := map[string]interface{}{"resourceOrders": []map[string]interface{}{
		{"id": ids[0], "order": 1},
		{"id": ids[1], "order": 1},
	}}
	if code, _ := call(t, a, http.MethodPut, "/api/modules/"+module+"/resources/reorder", duplicate); code < 400 {
		t.Fatalf("duplicate reorder status = %d, want error", code)
	}
}

func TestErrorMapping(t *testing.T) {
	a := newTestApp(t)

	cases := []struct {
		method string
		path   string
		body   interface{}
		want   int
	}{
		{http.MethodGet, "/api/courses/missing", nil, http.StatusNotFound},
		{http.MethodGet, "/api/users/missing", nil, http.StatusNotFound},
		{http.MethodPost, "/api/users", map[string]string{"name": "x", "email": "not-an-email", "role": "student"}, http.StatusBadRequest},
		{http.MethodPost, "/api/courses/missing/enroll", map[string]string{"studentId": "nobody"}, http.StatusNotFound},
		{http.MethodGet, "/api/puzzles/unknown", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		if code, env := call(t, a, tc.method, tc.path, tc.body); code != tc.want {
			t.Fatalf("%s %s status = %d (%s), want %d", tc.method, tc.path, code, env.Message, tc.want)
		}
	}
}

func TestApplyConfigUpdatesRateLimit(t *testing.T) {
	a := newTestApp(t)

	reloaded := *a.Config
	reloaded.Log = config.LogConfig{Level: "warn"}
	reloaded.RateLimit = config.RateLimitConfig{MaxRequests: 1, WindowMinutes: 60}
	a.applyConfig(&reloaded)

	if code, _ := call(t, a, http.MethodGet, "/api/health", nil); code != http.StatusOK {
		t.Fatalf("first request status = %d", code)
	}
	if code, _ := call(t, a, http.MethodGet, "/api/health", nil); code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", code)
	}
}

func TestListPuzzles(t *testing.T) {
	a := newTestApp(t)

	code, env := call(t, a, http.MethodGet, "/api/puzzles", nil)
	if code != http.StatusOK {
		t.Fatalf("list puzzles status = %d", code)
	}
	var ids []string
	if err := json.Unmarshal(env.Data, &ids); err != nil {
		t.Fatalf("decode ids: %v", err)
	}
	if len(ids) == 0 || ids[0] != "bible-1" {
		t.Fatalf("puzzle ids = %v", ids)
	}
	if code, _ := call(t, a, http.MethodGet, "/api/puzzles/"+ids[0], nil); code != http.StatusOK {
		t.Fatalf("get listed puzzle status = %d", code)
	}
}
