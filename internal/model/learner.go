package model

import "time"

type Occupation string

const (
	OccupationStudent              Occupation = "student"
	OccupationDeveloper            Occupation = "developer"
	OccupationDataScientist        Occupation = "data_scientist"
	OccupationDatabaseAdmin        Occupation = "dba"
	OccupationCybersecurityAnalyst Occupation = "cybersecurity_analyst"
	OccupationAIEngineer           Occupation = "ai_engineer"
	OccupationPenetrationTester    Occupation = "penetration_tester"
)

// swagger:model Learner
type Learner struct {
	BaseModel
	UserID                uint       `gorm:"uniqueIndex;not null" json:"userId"`
	User                  *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Occupation            Occupation `gorm:"size:25;not null;default:'student'" json:"occupation"`
	SocialLink            string     `gorm:"size:200" json:"socialLink"`
	ProfileImage          string     `gorm:"size:255" json:"profileImage"`
	DateJoined            *time.Time `json:"dateJoined"`
	CompletionRate        float64    `gorm:"default:0" json:"completionRate"`
	TotalCoursesCompleted int        `gorm:"default:0" json:"totalCoursesCompleted"`
}

func (Learner) TableName() string {
	return "learners"
}

// swagger:model Instructor
type Instructor struct {
	BaseModel
	UserID        uint   `gorm:"index;not null" json:"userId"`
	User          *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FullTime      bool   `json:"fullTime"`
	TotalLearners int    `gorm:"default:0" json:"totalLearners"`
	Bio           string `gorm:"type:text" json:"bio"`
	Expertise     string `gorm:"size:200" json:"expertise"`
	ProfileImage  string `gorm:"size:255" json:"profileImage"`
}

func (Instructor) TableName() string {
	return "instructors"
}
