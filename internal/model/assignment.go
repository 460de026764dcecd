package model

type AssignmentType string

const (
	AssignmentText AssignmentType = "text"
	AssignmentFile AssignmentType = "file"
)

// Assignment text 类型只带 Prompt，file 类型只带 FilePath
// swagger:model Assignment
type Assignment struct {
	UUIDBase
	ModuleID    string         `gorm:"type:varchar(36);index;not null" json:"moduleId"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	DueDate     string         `gorm:"size:10;not null" json:"dueDate"`
	Points      int            `gorm:"not null" json:"points"`
	Type        AssignmentType `gorm:"size:10;not null" json:"type"`
	Prompt      string         `gorm:"type:text" json:"prompt,omitempty"`
	FilePath    string         `gorm:"size:512" json:"filePath,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}
