package service

import (
	"context"

	"eduverse_backend/internal/badge"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/util"

	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	Store    repository.Store
	Progress *ProgressService
}

func NewDashboardService(store repository.Store, progress *ProgressService) *DashboardService {
	return &DashboardService{Store: store, Progress: progress}
}

type EnrolledCourse struct {
	CourseID         string `json:"courseId"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail,omitempty"`
	Progress         int    `json:"progress"`
	Completed        bool   `json:"completed"`
	CompletedModules int    `json:"completedModules"`
}

type StudentDashboard struct {
	User               *model.User         `json:"user"`
	Courses            []EnrolledCourse    `json:"courses"`
	Badges             []model.BadgeStatus `json:"badges"`
	EarnedBadges       int                 `json:"earnedBadges"`
	CompletedCourses   int                 `json:"completedCourses"`
	ResourcesCompleted int64               `json:"resourcesCompleted"`
}

// GetStudentDashboard 并行读取选课、徽章和资源完成数
func (s *DashboardService) GetStudentDashboard(ctx context.Context, userID string) (*StudentDashboard, error) {
	user, err := s.Store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		enrollments []model.Enrollment
		earned      []model.UserBadge
		resources   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enrollments, err = s.Progress.ListByStudent(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		earned, err = s.Store.Badges().ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		resources, err = s.Store.ResourceProgress().CountCompletedByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	courses, err := s.Store.Courses().FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	d := &StudentDashboard{
		User:               user,
		Courses:            make([]EnrolledCourse, 0, len(enrollments)),
		Badges:             badge.Merge(earned),
		EarnedBadges:       len(earned),
		ResourcesCompleted: resources,
	}
	for _, e := range enrollments {
		c := byID[e.CourseID]
		d.Courses = append(d.Courses, EnrolledCourse{
			CourseID:         e.CourseID,
			Title:            c.Title,
			Thumbnail:        c.Thumbnail,
			Progress:         e.Progress,
			Completed:        e.Completed,
			CompletedModules: len(e.CompletedModules),
		})
		if e.Completed {
			d.CompletedCourses++
		}
	}
	return d, nil
}

type InstructorCourse struct {
	CourseID        string  `json:"courseId"`
	Title           string  `json:"title"`
	Modules         int     `json:"modules"`
	Enrollments     int64   `json:"enrollments"`
	Completed       int64   `json:"completed"`
	AverageProgress float64 `json:"averageProgress"`
}

type InstructorDashboard struct {
	InstructorID     string             `json:"instructorId"`
	Courses          []InstructorCourse `json:"courses"`
	TotalEnrollments int64              `json:"totalEnrollments"`
}

// GetInstructorDashboard 教师名下课程的模块数与选课汇总
func (s *DashboardService) GetInstructorDashboard(ctx context.Context, instructorID string) (*InstructorDashboard, error) {
	if _, err := s.Store.Users().FindByID(ctx, instructorID); err != nil {
		return nil, err
	}
	courses, _, err := s.Store.Courses().List(ctx,
		repository.CourseFilter{InstructorID: instructorID},
		util.Page{Page: 1, Limit: util.MaxPageSize, Sort: "createdAt"})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	var (
		moduleCounts map[string]int
		stats        map[string]repository.CourseStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		moduleCounts, err = s.Store.Modules().CountByCourses(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.Store.Enrollments().StatsByCourses(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &InstructorDashboard{InstructorID: instructorID, Courses: make([]InstructorCourse, 0, len(courses))}
	for _, c := range courses {
		st := stats[c.ID]
		d.Courses = append(d.Courses, InstructorCourse{
			CourseID:        c.ID,
			Title:           c.Title,
			Modules:         moduleCounts[c.ID],
			Enrollments:     st.Enrollments,
			Completed:       st.Completed,
			AverageProgress: st.AverageProgress,
		})
		d.TotalEnrollments += st.Enrollments
	}
	return d, nil
}
