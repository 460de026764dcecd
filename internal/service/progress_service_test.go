package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"eduverse_backend/internal/badge"
	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"
)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{5, 3, 100},
	}
	for _, tt := range tests {
		if got := CalculateProgress(tt.done, tt.total); got != tt.want {
			t.Fatalf("CalculateProgress(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestEnrollIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, _ := env.course(t, 2)
	student := env.user(t, model.Student)

	first, created, err := env.progress.Enroll(ctx, student.ID, course.ID)
	if err != nil || !created {
		t.Fatalf("first enroll: created=%v err=%v", created, err)
	}
	if first.Progress != 0 || len(first.CompletedModules) != 0 {
		t.Fatalf("new enrollment should start empty: %+v", first)
	}

	second, created, err := env.progress.Enroll(ctx, student.ID, course.ID)
	if err != nil || created {
		t.Fatalf("second enroll: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatalf("second enroll returned a different record")
	}
	list, _ := env.store.Enrollments().ListByCourse(ctx, course.ID)
	if len(list) != 1 {
		t.Fatalf("expected one enrollment, got %d", len(list))
	}
}

func TestEnrollUnknownCourseOrStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, _ := env.course(t, 1)
	student := env.user(t, model.Student)

	if _, _, err := env.progress.Enroll(ctx, student.ID, "missing"); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("unknown course: %v", err)
	}
	if _, _, err := env.progress.Enroll(ctx, "missing", course.ID); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("unknown student: %v", err)
	}
}

// 场景 A
func TestCourseCompletionFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, modules := env.course(t, 4)
	student := env.user(t, model.Student)

	if _, _, err := env.progress.Enroll(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	res, err := env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, modules[0].ID)
	if err != nil {
		t.Fatalf("toggle m1: %v", err)
	}
	if res.Progress != 25 || !res.ModuleCompleted || !res.FirstCompletion || res.CourseCompleted {
		t.Fatalf("unexpected result after m1: %+v", res)
	}
	if len(res.AwardedBadges) != 1 || res.AwardedBadges[0] != badge.FaithfulStarter {
		t.Fatalf("expected b1, got %v", res.AwardedBadges)
	}
	if got := []string(res.Enrollment.CompletedModules); len(got) != 1 || got[0] != modules[0].ID {
		t.Fatalf("completed modules = %v", got)
	}

	for i, m := range modules[1:] {
		res, err = env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, m.ID)
		if err != nil {
			t.Fatalf("toggle m%d: %v", i+2, err)
		}
		if res.FirstCompletion {
			t.Fatalf("first completion flag set again on m%d", i+2)
		}
	}
	if res.Progress != 100 || !res.CourseCompleted || !res.Enrollment.Completed {
		t.Fatalf("expected course completion, got %+v", res)
	}
	if len(res.AwardedBadges) != 1 || res.AwardedBadges[0] != badge.CompletedInChrist {
		t.Fatalf("expected b3, got %v", res.AwardedBadges)
	}
	if res.Enrollment.CompletedAt == nil {
		t.Fatalf("completedAt should be set")
	}

	if n := len(env.events.EventsOfType(events.CourseCompleted)); n != 1 {
		t.Fatalf("expected one course.completed event, got %d", n)
	}
	if n := len(env.events.EventsOfType(events.BadgeAwarded)); n != 2 {
		t.Fatalf("expected two badge.awarded events, got %d", n)
	}
	if n := len(env.events.EventsOfType(events.ModuleToggled)); n != 4 {
		t.Fatalf("expected four module.toggled events, got %d", n)
	}
}

func TestToggleOffKeepsBadges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, modules := env.course(t, 2)
	student := env.user(t, model.Student)
	env.progress.Enroll(ctx, student.ID, course.ID)

	for _, m := range modules {
		if _, err := env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, m.ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	res, err := env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, modules[1].ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if res.ModuleCompleted || res.Progress != 50 || res.Enrollment.Completed || res.Enrollment.CompletedAt != nil {
		t.Fatalf("unexpected state after toggling off: %+v", res.Enrollment)
	}

	statuses, err := env.badges.ListUserBadges(ctx, student.ID)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	earned := map[model.BadgeID]bool{}
	for _, s := range statuses {
		if s.Earned {
			earned[s.ID] = true
		}
	}
	if !earned[badge.FaithfulStarter] || !earned[badge.CompletedInChrist] {
		t.Fatalf("badges must not be revoked, got %v", earned)
	}

	// 再次完成不会重复授予
	res, err = env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, modules[1].ID)
	if err != nil {
		t.Fatalf("toggle on again: %v", err)
	}
	if !res.CourseCompleted || len(res.AwardedBadges) != 0 {
		t.Fatalf("expected completion without new badges, got %+v", res)
	}
	if n := len(env.events.EventsOfType(events.BadgeAwarded)); n != 2 {
		t.Fatalf("badge.awarded should fire once per badge, got %d", n)
	}
}

func TestToggleErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, modules := env.course(t, 1)
	other, otherModules := env.course(t, 1)
	student := env.user(t, model.Student)
	env.progress.Enroll(ctx, student.ID, course.ID)

	tests := []struct {
		name                     string
		user, courseID, moduleID string
	}{
		{"not enrolled", student.ID, other.ID, otherModules[0].ID},
		{"module of another course", student.ID, course.ID, otherModules[0].ID},
		{"unknown module", student.ID, course.ID, "missing"},
		{"unknown student", "missing", course.ID, modules[0].ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.progress.ToggleModuleCompletion(ctx, tt.user, tt.courseID, tt.moduleID)
			if !errors.Is(err, util.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestProgressIgnoresDeletedModules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, modules := env.course(t, 3)
	student := env.user(t, model.Student)
	env.progress.Enroll(ctx, student.ID, course.ID)

	env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, modules[0].ID)
	env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, modules[1].ID)
	if err := env.catalog.DeleteModule(ctx, course.ID, modules[0].ID); err != nil {
		t.Fatalf("delete module: %v", err)
	}

	e, err := env.progress.GetEnrollment(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("get enrollment: %v", err)
	}
	if e.Progress != 50 || len(e.CompletedModules) != 1 {
		t.Fatalf("expected 1 of 2 modules, got %d%% %v", e.Progress, e.CompletedModules)
	}

	res, err := env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, modules[2].ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.Progress != 100 || !res.CourseCompleted {
		t.Fatalf("expected completion after deleted module is pruned, got %+v", res)
	}
}

func TestProgressBoundHolds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, modules := env.course(t, 3)
	student := env.user(t, model.Student)
	env.progress.Enroll(ctx, student.ID, course.ID)

	sequence := []int{0, 1, 0, 2, 1, 1, 0, 2}
	for _, i := range sequence {
		res, err := env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, modules[i].ID)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		e := res.Enrollment
		want := CalculateProgress(len(e.CompletedModules), len(modules))
		if e.Progress != want || e.Progress < 0 || e.Progress > 100 {
			t.Fatalf("progress %d does not match %d completed modules", e.Progress, len(e.CompletedModules))
		}
	}
}

func TestConcurrentTogglesOnSameEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, modules := env.course(t, 5)
	student := env.user(t, model.Student)
	env.progress.Enroll(ctx, student.ID, course.ID)

	var wg sync.WaitGroup
	errs := make(chan error, len(modules))
	for _, m := range modules {
		wg.Add(1)
		go func(moduleID string) {
			defer wg.Done()
			_, err := env.progress.ToggleModuleCompletion(ctx, student.ID, course.ID, moduleID)
			errs <- err
		}(m.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	e, err := env.progress.GetEnrollment(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Progress != 100 || len(e.CompletedModules) != len(modules) {
		t.Fatalf("lost update: %d%% %v", e.Progress, e.CompletedModules)
	}
	ub, _ := env.store.Badges().ListByUser(ctx, student.ID)
	if len(ub) != 2 {
		t.Fatalf("expected b1 and b3 exactly once, got %d records", len(ub))
	}
}

func TestStudentProgressViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, modules := env.course(t, 2)
	s1 := env.user(t, model.Student)
	s2 := env.user(t, model.Student)
	env.progress.Enroll(ctx, s1.ID, course.ID)
	env.progress.Enroll(ctx, s2.ID, course.ID)
	env.progress.ToggleModuleCompletion(ctx, s1.ID, course.ID, modules[1].ID)

	detail, err := env.progress.GetStudentProgress(ctx, course.ID, s1.ID)
	if err != nil {
		t.Fatalf("student progress: %v", err)
	}
	if len(detail.Modules) != 2 || detail.Modules[0].Completed || !detail.Modules[1].Completed {
		t.Fatalf("unexpected module statuses %+v", detail.Modules)
	}

	rows, err := env.progress.ListCourseProgress(ctx, course.ID)
	if err != nil {
		t.Fatalf("course progress: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	students := map[string]*model.User{s1.ID: s1, s2.ID: s2}
	for _, r := range rows {
		u := students[r.StudentID]
		if r.TotalModules != 2 || u == nil || r.StudentName != u.Name || r.Email != u.Email {
			t.Fatalf("incomplete row %+v", r)
		}
		if r.StudentID == s1.ID && r.Progress != 50 {
			t.Fatalf("s1 progress = %d", r.Progress)
		}
	}

	list, err := env.progress.ListByStudent(ctx, s1.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list by student: %v %d", err, len(list))
	}
}

func TestListCourseProgressPropagatesUserLookupErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	course, _ := env.course(t, 1)
	student := env.user(t, model.Student)
	if _, _, err := env.progress.Enroll(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if err := env.db.Exec("ALTER TABLE users RENAME TO users_archived").Error; err != nil {
		t.Fatalf("rename users: %v", err)
	}
	if _, err := env.progress.ListCourseProgress(ctx, course.ID); err == nil {
		t.Fatalf("expected user lookup error, got rows")
	}
}
