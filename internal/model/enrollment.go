package model

import (
	"time"

	"gorm.io/datatypes"
)

// Enrollment 学生与课程的一对一选课记录
// swagger:model Enrollment
type Enrollment struct {
	UUIDBase
	StudentID        string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_student_course,priority:1" json:"studentId"`
	CourseID         string                      `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_enrollment_student_course,priority:2" json:"courseId"`
	EnrolledAt       time.Time                   `gorm:"not null" json:"enrolledAt"`
	CompletedModules datatypes.JSONSlice[string] `json:"completedModules"`
	Progress         int                         `gorm:"not null" json:"progress"`
	Completed        bool                        `json:"completed"`
	FirstCompletedAt *time.Time                  `json:"firstCompletedAt,omitempty"`
	CompletedAt      *time.Time                  `json:"completedAt,omitempty"`
	// Version 乐观锁版本号，每次更新 +1
	Version int `gorm:"not null" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) HasCompleted(moduleID string) bool {
	for _, id := range e.CompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}
