package model

import "time"

// Submission 一次考试提交，Score 为得分，Grade 为百分制成绩
// swagger:model Submission
type Submission struct {
	BaseModel
	EnrollmentID    uint        `gorm:"index;not null" json:"enrollmentId"`
	Enrollment      *Enrollment `gorm:"foreignKey:EnrollmentID" json:"-"`
	Choices         []Choice    `gorm:"many2many:submission_choices" json:"choices,omitempty"`
	Timestamp       *time.Time  `json:"timestamp"`
	ExamSessionTime *int        `json:"examSessionTime"` // 秒
	Score           float64     `gorm:"default:0" json:"score"`
	Grade           float64     `gorm:"default:0" json:"grade"`
}

func (Submission) TableName() string {
	return "submissions"
}

// ExamSession 仅记录考试时长，不做计时校验
// swagger:model ExamSession
type ExamSession struct {
	BaseModel
	UserID               uint       `gorm:"index;not null" json:"userId"`
	CourseID             uint       `gorm:"index;not null" json:"courseId"`
	StartTime            time.Time  `json:"startTime"`
	EndTime              *time.Time `json:"endTime"`
	TimeRemaining        *int       `json:"timeRemaining"`
	IsActive             bool       `gorm:"index" json:"isActive"`
	TotalTimeAllowed     *int       `json:"totalTimeAllowed"`
	CurrentQuestionIndex int        `gorm:"default:0" json:"currentQuestionIndex"`
	Completed            bool       `json:"completed"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}
