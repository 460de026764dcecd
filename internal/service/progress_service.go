package service

import (
	"context"
	"math"
	"time"

	"eduverse_backend/internal/badge"
	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/pkg/lock"
	"eduverse_backend/pkg/logger"
	"eduverse_backend/pkg/monitoring"
	"eduverse_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ProgressService 选课记录与模块完成进度
type ProgressService struct {
	Store  repository.Store
	Locker lock.Locker
	Badges *BadgeService
	Events events.Publisher
	Now    func() time.Time
}

func NewProgressService(store repository.Store, locker lock.Locker, badges *BadgeService, pub events.Publisher) *ProgressService {
	return &ProgressService{
		Store:  store,
		Locker: locker,
		Badges: badges,
		Events: pub,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// TransitionResult 一次切换模块完成状态的结果
type TransitionResult struct {
	Enrollment      *model.Enrollment `json:"enrollment"`
	Progress        int               `json:"progress"`
	ModuleCompleted bool              `json:"moduleCompleted"`
	FirstCompletion bool              `json:"firstCompletion"`
	CourseCompleted bool              `json:"courseCompleted"`
	AwardedBadges   []model.BadgeID   `json:"awardedBadges"`
}

// CalculateProgress round(100*done/total)，total 为 0 时为 0
func CalculateProgress(done, total int) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done > total {
		done = total
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

type toggleOutcome struct {
	added           bool
	firstCompletion bool
	courseCompleted bool
}

// retainModules 去掉已不属于课程的模块 ID 并去重
func retainModules(completed []string, courseModules []string) datatypes.JSONSlice[string] {
	valid := make(map[string]bool, len(courseModules))
	for _, id := range courseModules {
		valid[id] = true
	}
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]bool, len(completed))
	for _, id := range completed {
		if valid[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// applyToggle 切换 moduleID 的完成状态并重算进度，courseModules 为课程当前全部模块
func applyToggle(e *model.Enrollment, moduleID string, courseModules []string, now time.Time) toggleOutcome {
	completed := retainModules(e.CompletedModules, courseModules)

	var out toggleOutcome
	idx := -1
	for i, id := range completed {
		if id == moduleID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		completed = append(completed[:idx], completed[idx+1:]...)
	} else {
		completed = append(completed, moduleID)
		out.added = true
	}

	total := len(courseModules)
	e.CompletedModules = completed
	e.Progress = CalculateProgress(len(completed), total)
	e.Completed = total > 0 && len(completed) == total

	if out.added && e.FirstCompletedAt == nil {
		t := now
		e.FirstCompletedAt = &t
		out.firstCompletion = true
	}
	if out.added && e.Completed {
		t := now
		e.CompletedAt = &t
		out.courseCompleted = true
	}
	if !e.Completed {
		e.CompletedAt = nil
	}
	return out
}

// refresh 按课程当前模块重算展示用的进度，不写库
func refresh(e *model.Enrollment, courseModules []string) {
	completed := retainModules(e.CompletedModules, courseModules)
	e.CompletedModules = completed
	e.Progress = CalculateProgress(len(completed), len(courseModules))
	e.Completed = len(courseModules) > 0 && len(completed) == len(courseModules)
}

// Enroll 幂等，重复调用返回已有记录；created 表示本次是否新建
func (s *ProgressService) Enroll(ctx context.Context, studentID, courseID string) (*model.Enrollment, bool, error) {
	if _, err := s.Store.Courses().FindByID(ctx, courseID); err != nil {
		return nil, false, err
	}
	if _, err := s.Store.Users().FindByID(ctx, studentID); err != nil {
		return nil, false, err
	}

	e := &model.Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		EnrolledAt:       s.Now(),
		CompletedModules: datatypes.JSONSlice[string]{},
		Version:          1,
	}
	created, err := s.Store.Enrollments().Create(ctx, e)
	if err != nil {
		return nil, false, err
	}
	if !created {
		existing, err := s.Store.Enrollments().FindByStudentAndCourse(ctx, studentID, courseID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	logger.Log.Info("Student enrolled", zap.String("student_id", studentID), zap.String("course_id", courseID))
	return e, true, nil
}

// ToggleModuleCompletion 同一选课记录串行执行，并以版本号做乐观锁兜底
func (s *ProgressService) ToggleModuleCompletion(ctx context.Context, userID, courseID, moduleID string) (result *TransitionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "ProgressService.ToggleModuleCompletion",
		attribute.String("user.id", userID),
		attribute.String("course.id", courseID),
		attribute.String("module.id", moduleID))
	defer func() { tracing.EndSpan(span, err) }()

	release, err := acquire(ctx, s.Locker, "enrollment", lock.EnrollmentKey(userID, courseID))
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.Now()
	var outcome toggleOutcome
	result = &TransitionResult{AwardedBadges: []model.BadgeID{}}

	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		e, err := tx.Enrollments().FindByStudentAndCourse(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if _, err := tx.Modules().FindInCourse(ctx, courseID, moduleID); err != nil {
			return err
		}
		moduleIDs, err := tx.Modules().IDsByCourse(ctx, courseID)
		if err != nil {
			return err
		}

		outcome = applyToggle(e, moduleID, moduleIDs, now)
		if err := tx.Enrollments().UpdateWithVersion(ctx, e); err != nil {
			return err
		}

		var triggered []badge.Event
		if outcome.firstCompletion {
			triggered = append(triggered, badge.FirstModuleCompleted)
		}
		if outcome.courseCompleted {
			triggered = append(triggered, badge.CourseCompleted)
		}
		for _, ev := range triggered {
			id, awarded, err := s.Badges.handleEventWith(ctx, tx, userID, ev)
			if err != nil {
				return err
			}
			if awarded {
				result.AwardedBadges = append(result.AwardedBadges, id)
			}
		}

		result.Enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Progress = result.Enrollment.Progress
	result.ModuleCompleted = outcome.added
	result.FirstCompletion = outcome.firstCompletion
	result.CourseCompleted = outcome.courseCompleted
	s.afterToggle(ctx, userID, courseID, moduleID, result)
	return result, nil
}

func (s *ProgressService) afterToggle(ctx context.Context, userID, courseID, moduleID string, r *TransitionResult) {
	direction := "uncompleted"
	if r.ModuleCompleted {
		direction = "completed"
	}
	monitoring.ModuleToggles.WithLabelValues(direction).Inc()
	logger.Log.Info("Module completion toggled",
		zap.String("user_id", userID),
		zap.String("course_id", courseID),
		zap.String("module_id", moduleID),
		zap.String("direction", direction),
		zap.Int("progress", r.Progress))

	publishEvent(ctx, s.Events, events.ModuleToggled, userID, map[string]interface{}{
		"courseId":  courseID,
		"moduleId":  moduleID,
		"completed": r.ModuleCompleted,
		"progress":  r.Progress,
	})
	if r.FirstCompletion {
		publishEvent(ctx, s.Events, events.FirstModuleCompleted, userID, map[string]interface{}{
			"courseId": courseID,
			"moduleId": moduleID,
		})
	}
	if r.CourseCompleted {
		monitoring.CourseCompletions.Inc()
		publishEvent(ctx, s.Events, events.CourseCompleted, userID, map[string]interface{}{
			"courseId": courseID,
		})
	}
	for _, id := range r.AwardedBadges {
		s.Badges.announce(ctx, userID, id)
	}
}

// GetEnrollment 返回按课程当前模块重算后的进度
func (s *ProgressService) GetEnrollment(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	e, err := s.Store.Enrollments().FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	moduleIDs, err := s.Store.Modules().IDsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	refresh(e, moduleIDs)
	return e, nil
}

func (s *ProgressService) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	if _, err := s.Store.Users().FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	list, err := s.Store.Enrollments().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	modulesByCourse := make(map[string][]string)
	for i := range list {
		courseID := list[i].CourseID
		ids, ok := modulesByCourse[courseID]
		if !ok {
			if ids, err = s.Store.Modules().IDsByCourse(ctx, courseID); err != nil {
				return nil, err
			}
			modulesByCourse[courseID] = ids
		}
		refresh(&list[i], ids)
	}
	return list, nil
}

func (s *ProgressService) ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	if _, err := s.Store.Courses().FindByID(ctx, courseID); err != nil {
		return nil, err
	}
	list, err := s.Store.Enrollments().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	moduleIDs, err := s.Store.Modules().IDsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		refresh(&list[i], moduleIDs)
	}
	return list, nil
}

// ModuleStatus 学生在单个模块上的完成情况
type ModuleStatus struct {
	ModuleID  string `json:"moduleId"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	Completed bool   `json:"completed"`
}

type StudentCourseProgress struct {
	Enrollment *model.Enrollment `json:"enrollment"`
	Modules    []ModuleStatus    `json:"modules"`
}

// GetStudentProgress 教师查看单个学生在课程中的逐模块进度
func (s *ProgressService) GetStudentProgress(ctx context.Context, courseID, studentID string) (*StudentCourseProgress, error) {
	e, err := s.Store.Enrollments().FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	modules, err := s.Store.Modules().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	refresh(e, ids)

	out := &StudentCourseProgress{Enrollment: e, Modules: make([]ModuleStatus, 0, len(modules))}
	for _, m := range modules {
		out.Modules = append(out.Modules, ModuleStatus{
			ModuleID:  m.ID,
			Title:     m.Title,
			Position:  m.Position,
			Completed: e.HasCompleted(m.ID),
		})
	}
	return out, nil
}

// StudentProgressRow 教师端学生进度表的一行
type StudentProgressRow struct {
	StudentID        string     `json:"studentId"`
	StudentName      string     `json:"studentName"`
	Email            string     `json:"email"`
	CompletedModules int        `json:"completedModules"`
	TotalModules     int        `json:"totalModules"`
	Progress         int        `json:"progress"`
	Completed        bool       `json:"completed"`
	EnrolledAt       time.Time  `json:"enrolledAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func (s *ProgressService) ListCourseProgress(ctx context.Context, courseID string) ([]StudentProgressRow, error) {
	list, err := s.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	moduleIDs, err := s.Store.Modules().IDsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]string, 0, len(list))
	for _, e := range list {
		studentIDs = append(studentIDs, e.StudentID)
	}
	users, err := s.Store.Users().FindByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	rows := make([]StudentProgressRow, 0, len(list))
	for _, e := range list {
		row := StudentProgressRow{
			StudentID:        e.StudentID,
			CompletedModules: len(e.CompletedModules),
			TotalModules:     len(moduleIDs),
			Progress:         e.Progress,
			Completed:        e.Completed,
			EnrolledAt:       e.EnrolledAt,
			CompletedAt:      e.CompletedAt,
		}
		if u, ok := byID[e.StudentID]; ok {
			row.StudentName = u.Name
			row.Email = u.Email
		}
		rows = append(rows, row)
	}
	return rows, nil
}
