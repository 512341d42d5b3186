package model

import "time"

type CourseLevel string

const (
	CourseBeginner     CourseLevel = "beginner"
	CourseIntermediate CourseLevel = "intermediate"
	CourseAdvanced     CourseLevel = "advanced"
	CourseExpert       CourseLevel = "expert"
)

// swagger:model Course
type Course struct {
	BaseModel
	Name             string       `gorm:"size:100;not null;default:'Online Course'" json:"name"`
	Image            string       `gorm:"size:255" json:"image"`
	Description      string       `gorm:"type:text" json:"description"`
	PubDate          *time.Time   `gorm:"index" json:"pubDate"`
	Level            CourseLevel  `gorm:"size:20;default:'beginner'" json:"level"`
	Duration         string       `gorm:"size:50;default:'Self-paced'" json:"duration"`
	Category         string       `gorm:"size:50;default:'Technology'" json:"category"`
	Prerequisites    string       `gorm:"type:text" json:"prerequisites"`
	LearningOutcomes string       `gorm:"type:text" json:"learningOutcomes"`
	IsActive         bool         `gorm:"index" json:"isActive"`
	TotalEnrollment  int          `gorm:"default:0" json:"totalEnrollment"`
	Rating           float64      `gorm:"default:0" json:"rating"`
	TotalRatings     int          `gorm:"default:0" json:"totalRatings"`
	Instructors      []Instructor `gorm:"many2many:course_instructors" json:"instructors,omitempty"`
	Lessons          []Lesson     `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
	Questions        []Question   `gorm:"foreignKey:CourseID" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID  uint   `gorm:"index;not null" json:"courseId"`
	Title     string `gorm:"size:200;default:'Lesson Title'" json:"title"`
	Order     int    `gorm:"column:sort_order;default:0" json:"order"`
	Content   string `gorm:"type:text" json:"content"`
	VideoURL  string `gorm:"size:500" json:"videoUrl"`
	Duration  int    `gorm:"default:0" json:"duration"` // 分钟
	IsPreview bool   `json:"isPreview"`
}

func (Lesson) TableName() string {
	return "lessons"
}
