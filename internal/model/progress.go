package model

import "time"

// swagger:model Progress
type Progress struct {
	BaseModel
	UserID             uint      `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"userId"`
	CourseID           uint      `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"courseId"`
	LessonsCompleted   []Lesson  `gorm:"many2many:progress_lessons" json:"lessonsCompleted,omitempty"`
	CurrentLesson      int       `gorm:"default:0" json:"currentLesson"`
	ProgressPercentage float64   `gorm:"default:0" json:"progressPercentage"`
	LastAccessed       time.Time `gorm:"autoUpdateTime" json:"lastAccessed"`
}

func (Progress) TableName() string {
	return "progresses"
}
