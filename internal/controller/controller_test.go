package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/database"
	"eduverse_backend/pkg/lock"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

var dbSeq int64

type harness struct {
	router  *gin.Engine
	store   repository.Store
	catalog *service.CatalogService
	seq     *service.ResourceSequencer
	users   *service.UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:controller_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := database.Open("sqlite", dsn, false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewStore(db)
	locker := lock.NewKeyedMutex(5 * time.Second)
	v := validator.New()
	pub := events.NewMockPublisher()

	h := &harness{
		store:   store,
		catalog: service.NewCatalogService(store, locker, v),
		seq:     service.NewResourceSequencer(store, locker, v, pub),
		users:   service.NewUserService(store, v),
	}
	tracker := service.NewResourceProgressService(store, locker, v, pub)
	storage := &service.StorageService{Provider: &service.LocalStorageProvider{Root: t.TempDir()}}
	content := service.NewContentService(storage, h.seq, 1)

	resources := NewResourceController(h.seq, h.catalog, tracker)
	uploads := NewContentController(content, h.catalog)

	r := gin.New()
	r.GET("/resources/:id", resources.GetResource)
	r.GET("/resources", resources.ListResources)
	r.POST("/modules/:moduleId/resources/upload", uploads.UploadResource)
	h.router = r
	return h
}

func (h *harness) module(t *testing.T) (*model.User, *model.Module) {
	t.Helper()
	ctx := context.Background()
	n := atomic.AddInt64(&dbSeq, 1)
	u, err := h.users.Create(ctx, &validator.UserRequest{
		Name:  "Teacher",
		Email: fmt.Sprintf("instructor%d@example.com", n),
		Role:  string(model.Instructor),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := h.catalog.CreateCourse(ctx, &validator.CourseRequest{Title: "Course", InstructorID: u.ID})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	m, err := h.catalog.CreateModule(ctx, c.ID, &validator.ModuleRequest{Title: "Module"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	return u, m
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var env util.Response
	env.Data = data
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{"a, b ,,c", []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		got := splitCSV(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("splitCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("splitCSV(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(content)
	}
	w.Close()
	return &body, w.FormDataContentType()
}

func TestUploadResourceForm(t *testing.T) {
	h := newHarness(t)
	instructor, m := h.module(t)

	body, contentType := multipartBody(t, map[string]string{
		"type":        "pdf",
		"tags":        "notes, week1",
		"isPublished": "true",
	}, "Week 1.pdf", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
	req := httptest.NewRequest(http.MethodPost, "/modules/"+m.ID+"/resources/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(util.UserIDHeader, instructor.ID)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var r model.Resource
	decode(t, w, &r)
	if r.Title != "Week 1" || r.Order != 1 || !r.IsPublished || r.CreatedBy != instructor.ID {
		t.Fatalf("unexpected resource %+v", r)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "notes" || r.Tags[1] != "week1" {
		t.Fatalf("tags = %v", r.Tags)
	}
}

func TestUploadResourceRequiresFile(t *testing.T) {
	h := newHarness(t)
	_, m := h.module(t)

	body, contentType := multipartBody(t, map[string]string{"type": "pdf"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/modules/"+m.ID+"/resources/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetResourceRecordsAccess(t *testing.T) {
	h := newHarness(t)
	instructor, m := h.module(t)
	ctx := context.Background()

	r, err := h.seq.Append(ctx, m.ID, &validator.ResourceRequest{Title: "Site", Type: "link", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	// 匿名访问不记录
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resources/"+r.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d", w.Code)
	}
	if _, err := h.store.ResourceProgress().Find(ctx, instructor.ID, r.ID); !util.IsNotFound(err) {
		t.Fatalf("expected no progress row, got %v", err)
	}

	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resources/"+r.ID+"?userId="+instructor.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	p, err := h.store.ResourceProgress().Find(ctx, instructor.ID, r.ID)
	if err != nil {
		t.Fatalf("find progress: %v", err)
	}
	if p.LastAccessedAt == nil {
		t.Fatalf("last accessed not recorded")
	}

	// 未知用户只记录告警，不影响读取
	req := httptest.NewRequest(http.MethodGet, "/resources/"+r.ID, nil)
	req.Header.Set(util.UserIDHeader, "ghost")
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unknown user status = %d", w.Code)
	}
}

func TestListResourcesFilters(t *testing.T) {
	h := newHarness(t)
	_, m := h.module(t)
	ctx := context.Background()

	published := true
	for i, tags := range [][]string{{"intro"}, {"advanced"}, {"intro", "video"}} {
		_, err := h.seq.Append(ctx, m.ID, &validator.ResourceRequest{
			Title:       fmt.Sprintf("R%d", i+1),
			Type:        "link",
			URL:         "https://example.com",
			Tags:        tags,
			IsPublished: &published,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resources?moduleId="+m.ID+"&tags=intro", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var page struct {
		List  []model.Resource `json:"list"`
		Total int64            `json:"total"`
	}
	decode(t, w, &page)
	if page.Total != 2 || len(page.List) != 2 || page.List[0].Title != "R1" || page.List[1].Title != "R3" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newHarness(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cases := []struct {
		name  string
		rdb   *redis.Client
		stop  bool
		code  int
		redis string
	}{
		{"without redis", nil, false, http.StatusOK, "disabled"},
		{"redis up", rdb, false, http.StatusOK, "up"},
		{"redis down", rdb, true, http.StatusServiceUnavailable, "down"},
	}
	for _, tc := range cases {
		if tc.stop {
			mr.Close()
		}
		r := gin.New()
		r.GET("/health", NewHealthController(h.store, tc.rdb).HealthCheck)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != tc.code {
			t.Fatalf("%s: status = %d, want %d", tc.name, w.Code, tc.code)
		}
		var data struct {
			Components map[string]string `json:"components"`
		}
		decode(t, w, &data)
		if data.Components["redis"] != tc.redis || data.Components["database"] != "up" {
			t.Fatalf("%s: components = %v", tc.name, data.Components)
		}
	}
}
