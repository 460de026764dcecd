package model

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	ModuleID  string         `gorm:"type:varchar(36);index;not null" json:"moduleId"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	UUIDBase
	QuizID   string       `gorm:"type:varchar(36);index;not null" json:"-"`
	Position int          `gorm:"not null" json:"position"`
	Text     string       `gorm:"type:text;not null" json:"text"`
	Options  []QuizOption `gorm:"foreignKey:QuestionID" json:"options"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type QuizOption struct {
	UUIDBase
	QuestionID string `gorm:"type:varchar(36);index;not null" json:"-"`
	Position   int    `gorm:"not null" json:"position"`
	Text       string `gorm:"size:500;not null" json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
}

func (QuizOption) TableName() string {
	return "quiz_options"
}

// AssignIDs 在写库前为整棵题目树生成 ID
func (q *Quiz) AssignIDs() {
	if q.ID == "" {
		q.ID = GenerateUUID()
	}
	for i := range q.Questions {
		question := &q.Questions[i]
		if question.ID == "" {
			question.ID = GenerateUUID()
		}
		question.QuizID = q.ID
		question.Position = i + 1
		for j := range question.Options {
			option := &question.Options[j]
			if option.ID == "" {
				option.ID = GenerateUUID()
			}
			option.QuestionID = question.ID
			option.Position = j + 1
		}
	}
}
