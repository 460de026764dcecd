package model

// swagger:model Course
type Course struct {
	UUIDBase
	Title        string   `gorm:"size:255;not null" json:"title"`
	Description  string   `gorm:"type:text" json:"description"`
	InstructorID string   `gorm:"type:varchar(36);index;not null" json:"instructorId"`
	Thumbnail    string   `gorm:"size:255" json:"thumbnail,omitempty"`
	Duration     string   `gorm:"size:50" json:"duration,omitempty"`
	Modules      []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// Module 课程下的学习单元，Position 决定展示顺序
// swagger:model Module
type Module struct {
	UUIDBase
	CourseID    string       `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Position    int          `gorm:"not null" json:"position"`
	Resources   []Resource   `gorm:"foreignKey:ModuleID" json:"resources"`
	Assignments []Assignment `gorm:"foreignKey:ModuleID" json:"assignments"`
	Quizzes     []Quiz       `gorm:"foreignKey:ModuleID" json:"quizzes"`
}

func (Module) TableName() string {
	return "modules"
}
