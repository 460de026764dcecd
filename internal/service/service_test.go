package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/database"
	"eduverse_backend/pkg/lock"

	"gorm.io/gorm"
)

var dbSeq int64

type testEnv struct {
	db        *gorm.DB
	store     repository.Store
	events    *events.MockPublisher
	validator *validator.Validator
	locker    lock.Locker

	users     *UserService
	catalog   *CatalogService
	sequencer *ResourceSequencer
	badges    *BadgeService
	progress  *ProgressService
	tracker   *ResourceProgressService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
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

	env := &testEnv{
		db:        db,
		store:     repository.NewStore(db),
		events:    events.NewMockPublisher(),
		validator: validator.New(),
		locker:    lock.NewKeyedMutex(10 * time.Second),
	}
	env.users = NewUserService(env.store, env.validator)
	env.catalog = NewCatalogService(env.store, env.locker, env.validator)
	env.sequencer = NewResourceSequencer(env.store, env.locker, env.validator, env.events)
	env.badges = NewBadgeService(env.store, env.events)
	env.progress = NewProgressService(env.store, env.locker, env.badges, env.events)
	env.tracker = NewResourceProgressService(env.store, env.locker, env.validator, env.events)
	return env
}

var userSeq int64

func (e *testEnv) user(t *testing.T, role model.UserRole) *model.User {
	t.Helper()
	n := atomic.AddInt64(&userSeq, 1)
	u, err := e.users.Create(context.Background(), &validator.UserRequest{
		Name:  fmt.Sprintf("User %d", n),
		Email: fmt.Sprintf("user%d@example.com", n),
		Role:  string(role),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// course 创建带 n 个模块的课程
func (e *testEnv) course(t *testing.T, modules int) (*model.Course, []*model.Module) {
	t.Helper()
	ctx := context.Background()
	instructor := e.user(t, model.Instructor)
	c, err := e.catalog.CreateCourse(ctx, &validator.CourseRequest{Title: "Foundations of Faith", InstructorID: instructor.ID})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	var list []*model.Module
	for i := 1; i <= modules; i++ {
		m, err := e.catalog.CreateModule(ctx, c.ID, &validator.ModuleRequest{Title: fmt.Sprintf("Module %d", i)})
		if err != nil {
			t.Fatalf("create module: %v", err)
		}
		list = append(list, m)
	}
	return c, list
}

func (e *testEnv) appendLink(t *testing.T, moduleID, title string) *model.Resource {
	t.Helper()
	r, err := e.sequencer.Append(context.Background(), moduleID, &validator.ResourceRequest{
		Title: title,
		Type:  "link",
		URL:   "https://example.com/" + title,
	})
	if err != nil {
		t.Fatalf("append %s: %v", title, err)
	}
	return r
}

// assertContiguous 模块内 order 恰好为 1..N
func assertContiguous(t *testing.T, e *testEnv, moduleID string) []model.Resource {
	t.Helper()
	list, err := e.store.Resources().ListByModule(context.Background(), moduleID)
	if err != nil {
		t.Fatalf("list resources: %v", err)
	}
	for i, r := range list {
		if r.Order != i+1 {
			t.Fatalf("resource %s has order %d at index %d", r.Title, r.Order, i)
		}
	}
	return list
}

func titles(list []model.Resource) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.Title)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func repositoryFilter(title string, t model.ResourceType) repository.ResourceFilter {
	return repository.ResourceFilter{Title: title, Type: t}
}
