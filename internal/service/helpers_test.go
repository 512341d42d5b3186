package service

import (
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/pkg/database"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库每个连接独立，固定单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db         *gorm.DB
	user       model.User
	learner    model.Learner
	course     model.Course
	lessons    []model.Lesson
	questions  []model.Question
	enrollment *model.Enrollment
}

// newFixture 一门启用的课程：5 个课时，两道题（10 分单选、20 分多选）
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db}

	f.user = model.User{Name: "alice", Email: "alice@example.com", Role: model.Student}
	require.NoError(t, db.Create(&f.user).Error)

	joined := time.Now()
	f.learner = model.Learner{UserID: f.user.ID, Occupation: model.OccupationStudent, DateJoined: &joined}
	require.NoError(t, db.Create(&f.learner).Error)

	pub := time.Now().Add(-24 * time.Hour)
	f.course = model.Course{Name: "Go Basics", PubDate: &pub, IsActive: true, Level: model.CourseBeginner}
	require.NoError(t, db.Create(&f.course).Error)

	for i := 1; i <= 5; i++ {
		lesson := model.Lesson{CourseID: f.course.ID, Title: "Lesson", Order: i}
		require.NoError(t, db.Create(&lesson).Error)
		f.lessons = append(f.lessons, lesson)
	}

	f.questions = []model.Question{
		{
			CourseID:     f.course.ID,
			Content:      "Which keyword starts a goroutine?",
			Grade:        10,
			QuestionType: model.MultipleChoice,
			IsActive:     true,
			Choices: []model.Choice{
				{Content: "go", IsCorrect: true},
				{Content: "async"},
			},
		},
		{
			CourseID:     f.course.ID,
			Content:      "Which are reference types?",
			Grade:        20,
			QuestionType: model.MultipleSelect,
			IsActive:     true,
			Choices: []model.Choice{
				{Content: "map", IsCorrect: true},
				{Content: "slice", IsCorrect: true},
				{Content: "int"},
			},
		},
	}
	for i := range f.questions {
		require.NoError(t, db.Create(&f.questions[i]).Error)
	}
	return f
}

func (f *fixture) enroll(t *testing.T) *model.Enrollment {
	t.Helper()
	f.enrollment = &model.Enrollment{
		UserID:       f.user.ID,
		CourseID:     f.course.ID,
		DateEnrolled: time.Now(),
		Mode:         model.ModeHonor,
	}
	require.NoError(t, f.db.Create(f.enrollment).Error)
	return f.enrollment
}

func (f *fixture) choice(q, c int) model.Choice {
	return f.questions[q].Choices[c]
}

func (f *fixture) completionService(passingGrade int) *CompletionService {
	return NewCompletionService(
		repository.NewEnrollmentRepository(f.db),
		repository.NewLearnerRepository(f.db),
		repository.NewCourseRepository(f.db),
		passingGrade,
	)
}

func (f *fixture) examService() *ExamService {
	return NewExamService(
		f.db,
		repository.NewCourseRepository(f.db),
		repository.NewEnrollmentRepository(f.db),
		repository.NewSubmissionRepository(f.db),
		repository.NewExamSessionRepository(f.db),
		NewAnswerExtractor(repository.NewChoiceRepository(f.db), DefaultAnswerPrefix),
		f.completionService(DefaultPassingGrade),
		3600,
	)
}

func (f *fixture) progressService() *ProgressService {
	return NewProgressService(
		f.db,
		repository.NewCourseRepository(f.db),
		repository.NewEnrollmentRepository(f.db),
		repository.NewProgressRepository(f.db),
	)
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
