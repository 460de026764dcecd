package service

import (
	"context"
	"strings"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/lock"
	"eduverse_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// CatalogService 课程、模块、资源元数据、作业和测验的增删改查
type CatalogService struct {
	Store     repository.Store
	Locker    lock.Locker
	Validator *validator.Validator
}

func NewCatalogService(store repository.Store, locker lock.Locker, v *validator.Validator) *CatalogService {
	return &CatalogService{Store: store, Locker: locker, Validator: v}
}

// ---- 课程 ----

func (s *CatalogService) CreateCourse(ctx context.Context, req *validator.CourseRequest) (*model.Course, error) {
	if err := s.Validator.ValidateCourse(req); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().FindByID(ctx, req.InstructorID); err != nil {
		return nil, err
	}
	course := &model.Course{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		InstructorID: req.InstructorID,
		Thumbnail:    req.Thumbnail,
		Duration:     req.Duration,
	}
	if err := s.Store.Courses().Create(ctx, course); err != nil {
		return nil, err
	}
	logger.Log.Info("Course created", zap.String("course_id", course.ID), zap.String("instructor_id", course.InstructorID))
	return course, nil
}

// GetCourse 返回完整的模块树
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return s.Store.Courses().FindTree(ctx, id)
}

func (s *CatalogService) ListCourses(ctx context.Context, filter repository.CourseFilter, page util.Page) ([]model.Course, int64, error) {
	return s.Store.Courses().List(ctx, filter, page)
}

func (s *CatalogService) ListInstructorCourses(ctx context.Context, instructorID string, page util.Page) ([]model.Course, int64, error) {
	if _, err := s.Store.Users().FindByID(ctx, instructorID); err != nil {
		return nil, 0, err
	}
	return s.Store.Courses().List(ctx, repository.CourseFilter{InstructorID: instructorID}, page)
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id string, req *validator.CourseRequest) (*model.Course, error) {
	if err := s.Validator.ValidateCourse(req); err != nil {
		return nil, err
	}
	course, err := s.Store.Courses().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.InstructorID != course.InstructorID {
		if _, err := s.Store.Users().FindByID(ctx, req.InstructorID); err != nil {
			return nil, err
		}
	}
	course.Title = strings.TrimSpace(req.Title)
	course.Description = req.Description
	course.InstructorID = req.InstructorID
	course.Thumbnail = req.Thumbnail
	course.Duration = req.Duration
	if err := s.Store.Courses().Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse 级联删除模块及其内容，同时删除选课记录
func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	if _, err := s.Store.Courses().FindByID(ctx, id); err != nil {
		return err
	}
	release, err := acquire(ctx, s.Locker, "course modules", lock.CourseModulesKey(id))
	if err != nil {
		return err
	}
	defer release()

	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		moduleIDs, err := tx.Modules().IDsByCourse(ctx, id)
		if err != nil {
			return err
		}
		if err := cascadeModules(ctx, tx, moduleIDs); err != nil {
			return err
		}
		if err := tx.Enrollments().DeleteByCourse(ctx, id); err != nil {
			return err
		}
		return tx.Courses().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Log.Info("Course deleted", zap.String("course_id", id))
	return nil
}

// cascadeModules 删除模块下的资源进度、资源、作业、测验以及模块本身
func cascadeModules(ctx context.Context, tx repository.Store, moduleIDs []string) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	resourceIDs, err := tx.Resources().IDsByModules(ctx, moduleIDs)
	if err != nil {
		return err
	}
	if err := tx.ResourceProgress().DeleteByResources(ctx, resourceIDs); err != nil {
		return err
	}
	if err := tx.Resources().DeleteByModules(ctx, moduleIDs); err != nil {
		return err
	}
	if err := tx.Assignments().DeleteByModules(ctx, moduleIDs); err != nil {
		return err
	}
	if err := tx.Quizzes().DeleteByModules(ctx, moduleIDs); err != nil {
		return err
	}
	return tx.Modules().DeleteByIDs(ctx, moduleIDs)
}

// ---- 模块 ----

// clampPosition 把请求的位置限制在 [1, max]
func clampPosition(requested *int, max int) int {
	if requested == nil || *requested > max {
		return max
	}
	if *requested < 1 {
		return 1
	}
	return *requested
}

// CreateModule position 为空时追加，否则插入并把后面的模块后移
func (s *CatalogService) CreateModule(ctx context.Context, courseID string, req *validator.ModuleRequest) (*model.Module, error) {
	if err := s.Validator.ValidateModule(req); err != nil {
		return nil, err
	}
	release, err := acquire(ctx, s.Locker, "course modules", lock.CourseModulesKey(courseID))
	if err != nil {
		return nil, err
	}
	defer release()

	module := &model.Module{
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	}
	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Courses().FindByID(ctx, courseID); err != nil {
			return err
		}
		max, err := tx.Modules().MaxPosition(ctx, courseID)
		if err != nil {
			return err
		}
		module.Position = clampPosition(req.Position, max+1)
		if module.Position <= max {
			if err := tx.Modules().ShiftPositionsRange(ctx, courseID, module.Position, max, 1); err != nil {
				return err
			}
		}
		return tx.Modules().Create(ctx, module)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Module created",
		zap.String("course_id", courseID),
		zap.String("module_id", module.ID),
		zap.Int("position", module.Position))
	return module, nil
}

// UpdateModule 修改标题描述，position 变化时移动模块并保持连续
func (s *CatalogService) UpdateModule(ctx context.Context, courseID, moduleID string, req *validator.ModuleRequest) (*model.Module, error) {
	if err := s.Validator.ValidateModule(req); err != nil {
		return nil, err
	}
	release, err := acquire(ctx, s.Locker, "course modules", lock.CourseModulesKey(courseID))
	if err != nil {
		return nil, err
	}
	defer release()

	var module *model.Module
	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		m, err := tx.Modules().FindInCourse(ctx, courseID, moduleID)
		if err != nil {
			return err
		}
		if req.Position != nil {
			max, err := tx.Modules().MaxPosition(ctx, courseID)
			if err != nil {
				return err
			}
			target := clampPosition(req.Position, max)
			switch {
			case target < m.Position:
				err = tx.Modules().ShiftPositionsRange(ctx, courseID, target, m.Position-1, 1)
			case target > m.Position:
				err = tx.Modules().ShiftPositionsRange(ctx, courseID, m.Position+1, target, -1)
			}
			if err != nil {
				return err
			}
			m.Position = target
		}
		m.Title = strings.TrimSpace(req.Title)
		m.Description = req.Description
		module = m
		return tx.Modules().Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// DeleteModule 级联删除模块内容，后面的模块前移一位
func (s *CatalogService) DeleteModule(ctx context.Context, courseID, moduleID string) error {
	release, err := acquire(ctx, s.Locker, "course modules", lock.CourseModulesKey(courseID))
	if err != nil {
		return err
	}
	defer release()
	releaseResources, err := acquire(ctx, s.Locker, "module resources", lock.ModuleResourcesKey(moduleID))
	if err != nil {
		return err
	}
	defer releaseResources()

	err = s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		m, err := tx.Modules().FindInCourse(ctx, courseID, moduleID)
		if err != nil {
			return err
		}
		if err := cascadeModules(ctx, tx, []string{m.ID}); err != nil {
			return err
		}
		return tx.Modules().ShiftPositionsAfter(ctx, courseID, m.Position, -1)
	})
	if err != nil {
		return err
	}
	logger.Log.Info("Module deleted", zap.String("course_id", courseID), zap.String("module_id", moduleID))
	return nil
}

// ---- 资源元数据 ----

func (s *CatalogService) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	return s.Store.Resources().FindByID(ctx, id)
}

func (s *CatalogService) ListResources(ctx context.Context, filter repository.ResourceFilter, page util.Page) ([]model.Resource, int64, error) {
	return s.Store.Resources().List(ctx, filter, page)
}

// UpdateResource 不修改 order，持锁避免覆盖并发排序的结果
func (s *CatalogService) UpdateResource(ctx context.Context, id string, req *validator.ResourceUpdateRequest) (*model.Resource, error) {
	existing, err := s.Store.Resources().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	release, err := acquire(ctx, s.Locker, "module resources", lock.ModuleResourcesKey(existing.ModuleID))
	if err != nil {
		return nil, err
	}
	defer release()

	// 重新读取，拿到持锁后的 order
	r, err := s.Store.Resources().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Validator.ValidateResourceUpdate(req, r); err != nil {
		return nil, err
	}

	if req.Title != nil {
		r.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Type != nil {
		r.Type = model.NormalizeResourceType(*req.Type)
	}
	if req.URL != nil {
		r.URL = *req.URL
	}
	if req.FilePath != nil {
		r.FilePath = *req.FilePath
	}
	if req.Content != nil {
		r.Content = *req.Content
	}
	if req.Tags != nil {
		tags := datatypes.JSONSlice[string]{}
		for _, t := range req.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		r.Tags = tags
	}
	if req.IsPublished != nil {
		r.IsPublished = *req.IsPublished
	}
	if r.Type != model.ResourceVideo {
		r.Duration = 0
	}
	if err := s.Store.Resources().Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ---- 作业 ----

func (s *CatalogService) CreateAssignment(ctx context.Context, moduleID string, req *validator.AssignmentRequest) (*model.Assignment, error) {
	if err := s.Validator.ValidateAssignment(req); err != nil {
		return nil, err
	}
	if _, err := s.Store.Modules().FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	a := &model.Assignment{
		ModuleID:    moduleID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		Points:      req.Points,
		Type:        model.AssignmentType(req.Type),
		Prompt:      req.Prompt,
		FilePath:    req.FilePath,
	}
	if err := s.Store.Assignments().Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) ListAssignments(ctx context.Context, moduleID string) ([]model.Assignment, error) {
	if _, err := s.Store.Modules().FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.Store.Assignments().ListByModule(ctx, moduleID)
}

func (s *CatalogService) DeleteAssignment(ctx context.Context, id string) error {
	if _, err := s.Store.Assignments().FindByID(ctx, id); err != nil {
		return err
	}
	return s.Store.Assignments().Delete(ctx, id)
}

// ---- 测验 ----

func (s *CatalogService) CreateQuiz(ctx context.Context, moduleID string, req *validator.QuizRequest) (*model.Quiz, error) {
	if err := s.Validator.ValidateQuiz(req); err != nil {
		return nil, err
	}
	if _, err := s.Store.Modules().FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	quiz := &model.Quiz{ModuleID: moduleID, Title: strings.TrimSpace(req.Title)}
	for _, q := range req.Questions {
		question := model.QuizQuestion{Text: q.Text}
		for _, o := range q.Options {
			question.Options = append(question.Options, model.QuizOption{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	quiz.AssignIDs()

	err := s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		return tx.Quizzes().Create(ctx, quiz)
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *CatalogService) GetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	return s.Store.Quizzes().FindByID(ctx, id)
}

func (s *CatalogService) ListQuizzes(ctx context.Context, moduleID string) ([]model.Quiz, error) {
	if _, err := s.Store.Modules().FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.Store.Quizzes().ListByModule(ctx, moduleID)
}

func (s *CatalogService) DeleteQuiz(ctx context.Context, id string) error {
	if _, err := s.Store.Quizzes().FindByID(ctx, id); err != nil {
		return err
	}
	return s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		return tx.Quizzes().Delete(ctx, id)
	})
}
