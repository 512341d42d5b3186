package model

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	MultipleSelect QuestionType = "multiple_select"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// swagger:model Question
type Question struct {
	BaseModel
	CourseID        uint         `gorm:"index;not null" json:"courseId"`
	Content         string       `gorm:"size:500" json:"content"`
	Grade           int          `json:"grade"` // 答对得分，0 分题目按 0 保存
	QuestionType    QuestionType `gorm:"size:20;default:'multiple_choice'" json:"questionType"`
	DifficultyLevel Difficulty   `gorm:"size:20;default:'medium'" json:"difficultyLevel"`
	IsActive        bool         `gorm:"index" json:"isActive"`
	MaxAttempts     int          `gorm:"default:3" json:"maxAttempts"`
	Feedback        string       `gorm:"type:text" json:"feedback"`
	Choices         []Choice     `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID  uint   `gorm:"index;not null" json:"questionId"`
	Content     string `gorm:"size:500" json:"content"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `gorm:"type:text" json:"explanation"`
}

func (Choice) TableName() string {
	return "choices"
}
