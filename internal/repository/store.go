package repository

import (
	"context"
	"errors"

	"eduverse_backend/internal/util"

	"gorm.io/gorm"
)

// Store 聚合所有仓储，事务内通过回调拿到绑定事务的 Store
type Store interface {
	Users() *UserRepository
	Courses() *CourseRepository
	Modules() *ModuleRepository
	Resources() *ResourceRepository
	Assignments() *AssignmentRepository
	Quizzes() *QuizRepository
	Enrollments() *EnrollmentRepository
	ResourceProgress() *ResourceProgressRepository
	Badges() *BadgeRepository

	WithTransaction(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

type gormStore struct {
	db *gorm.DB

	users            *UserRepository
	courses          *CourseRepository
	modules          *ModuleRepository
	resources        *ResourceRepository
	assignments      *AssignmentRepository
	quizzes          *QuizRepository
	enrollments      *EnrollmentRepository
	resourceProgress *ResourceProgressRepository
	badges           *BadgeRepository
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:               db,
		users:            NewUserRepository(db),
		courses:          NewCourseRepository(db),
		modules:          NewModuleRepository(db),
		resources:        NewResourceRepository(db),
		assignments:      NewAssignmentRepository(db),
		quizzes:          NewQuizRepository(db),
		enrollments:      NewEnrollmentRepository(db),
		resourceProgress: NewResourceProgressRepository(db),
		badges:           NewBadgeRepository(db),
	}
}

func (s *gormStore) Users() *UserRepository                        { return s.users }
func (s *gormStore) Courses() *CourseRepository                    { return s.courses }
func (s *gormStore) Modules() *ModuleRepository                    { return s.modules }
func (s *gormStore) Resources() *ResourceRepository                { return s.resources }
func (s *gormStore) Assignments() *AssignmentRepository            { return s.assignments }
func (s *gormStore) Quizzes() *QuizRepository                      { return s.quizzes }
func (s *gormStore) Enrollments() *EnrollmentRepository            { return s.enrollments }
func (s *gormStore) ResourceProgress() *ResourceProgressRepository { return s.resourceProgress }
func (s *gormStore) Badges() *BadgeRepository                      { return s.badges }

// WithTransaction 回调返回错误时整体回滚
func (s *gormStore) WithTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// notFound 把 gorm 的记录不存在翻译为领域错误
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NotFoundf(format, args...)
	}
	return err
}

func duplicate(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.Conflictf(format, args...)
	}
	return err
}

// paginate 先统计总数再取当前页
func paginate(q *gorm.DB, p util.Page, order string, dest interface{}) (int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	err := q.Order(order).Offset(p.Offset()).Limit(p.Limit).Find(dest).Error
	return total, err
}
