package model

import "time"

type EnrollmentMode string

const (
	ModeAudit       EnrollmentMode = "audit"
	ModeHonor       EnrollmentMode = "honor"
	ModeCertificate EnrollmentMode = "certificate"
	ModeVerified    EnrollmentMode = "verified"
)

// Enrollment 用户与课程的关联，记录进度与结课状态
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID            uint           `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID          uint           `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Course            *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	DateEnrolled      time.Time      `json:"dateEnrolled"`
	Mode              EnrollmentMode `gorm:"size:15;default:'audit'" json:"mode"`
	Rating            float64        `gorm:"default:0" json:"rating"`
	Progress          float64        `gorm:"default:0" json:"progress"` // 百分比，与 Progress.ProgressPercentage 同步
	Completed         bool           `gorm:"index" json:"completed"`
	CompletionDate    *time.Time     `json:"completionDate"`
	CertificateIssued bool           `json:"certificateIssued"`
	CertificateURL    string         `gorm:"size:500" json:"certificateUrl"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// swagger:model Certificate
type Certificate struct {
	BaseModel
	UserID        uint      `gorm:"index;not null" json:"userId"`
	CourseID      uint      `gorm:"index;not null" json:"courseId"`
	EnrollmentID  uint      `gorm:"uniqueIndex;not null" json:"enrollmentId"`
	IssueDate     time.Time `json:"issueDate"`
	CertificateID string    `gorm:"size:100;uniqueIndex;not null" json:"certificateId"`
	IsValid       bool      `json:"isValid"`
	FilePath      string    `gorm:"size:500" json:"filePath"`
}

func (Certificate) TableName() string {
	return "certificates"
}
