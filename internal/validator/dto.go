package validator

// CourseRequest 创建或更新课程
type CourseRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description" validate:"max=5000"`
	InstructorID string `json:"instructorId" validate:"required"`
	Thumbnail    string `json:"thumbnail" validate:"omitempty,max=255"`
	Duration     string `json:"duration" validate:"omitempty,max=50"`
}

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	// Position 为空时追加到末尾
	Position *int `json:"position" validate:"omitempty,min=1"`
}

type ResourceRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Type        string   `json:"type" validate:"required,resource_type"`
	URL         string   `json:"url" validate:"omitempty,max=512"`
	FilePath    string   `json:"filePath" validate:"omitempty,max=512"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	IsPublished *bool    `json:"isPublished"`
	Duration    float64  `json:"duration" validate:"min=0"`
	CreatedBy   string   `json:"createdBy"`
}

// ResourceUpdateRequest 只修改元数据，顺序由排序接口维护
type ResourceUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Type        *string  `json:"type" validate:"omitempty,resource_type"`
	URL         *string  `json:"url" validate:"omitempty,max=512"`
	FilePath    *string  `json:"filePath" validate:"omitempty,max=512"`
	Content     *string  `json:"content"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	IsPublished *bool    `json:"isPublished"`
}

type AssignmentRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Points      int    `json:"points" validate:"min=0"`
	Type        string `json:"type" validate:"required,assignment_type"`
	Prompt      string `json:"prompt"`
	FilePath    string `json:"filePath" validate:"omitempty,max=512"`
}

type QuizRequest struct {
	Title     string            `json:"title" validate:"required,max=255"`
	Questions []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type QuestionRequest struct {
	Text    string          `json:"text" validate:"required"`
	Options []OptionRequest `json:"options" validate:"required,min=2,dive"`
}

type OptionRequest struct {
	Text      string `json:"text" validate:"required,max=500"`
	IsCorrect bool   `json:"isCorrect"`
}

type UserRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"required,email,max=100"`
	Role   string `json:"role" validate:"required,user_role"`
	Avatar string `json:"avatar" validate:"omitempty,max=255"`
}

type ReorderItem struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order"`
}

type ReorderRequest struct {
	ResourceOrders []ReorderItem `json:"resourceOrders" validate:"dive"`
}

type EnrollRequest struct {
	StudentID string `json:"studentId" validate:"required"`
}

type ToggleRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// ProgressUpdateRequest Status 与 TimeSpent 均可省略
type ProgressUpdateRequest struct {
	UserID    string  `json:"userId" validate:"required"`
	Status    *string `json:"status" validate:"omitempty,progress_status"`
	TimeSpent *int64  `json:"timeSpent" validate:"omitempty,min=0"`
}

type PuzzleSubmitRequest struct {
	UserID string            `json:"userId" validate:"required"`
	Cells  map[string]string `json:"cells" validate:"required"`
}
